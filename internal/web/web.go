// Package web embeds the browser-facing assets: the single-page front end
// under public/ and the API docs under static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed public static
var assets embed.FS

// Public returns the front end rooted at public/.
func Public() fs.FS {
	return mustSub("public")
}

// Static returns the docs assets rooted at static/.
func Static() fs.FS {
	return mustSub("static")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
