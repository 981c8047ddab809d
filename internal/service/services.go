package service

import (
	"github.com/deppfellow/itemsvc/internal/lib/job"
	"github.com/deppfellow/itemsvc/internal/repository"
	"github.com/deppfellow/itemsvc/internal/server"
)

// Services groups the business layer.
type Services struct {
	Items *ItemService
	Job   *job.JobService
}

// NewService builds every service from the server container and repositories.
// Item change notifications are published only when a job service exists.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var notifier Notifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Items: NewItemService(repos.Items, notifier, s.Logger),
		Job:   s.Job,
	}, nil
}
