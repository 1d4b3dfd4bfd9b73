// Package web serves the browser UI and mounts the REST API.
package web

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"muzik/src/handler/api"
	"muzik/src/handler/webui"
	"muzik/src/jukebox"
	"muzik/src/util"
)

type webUI struct {
	build, version string
	urlRoot        string
	jukebox        *jukebox.Jukebox
	page           *template.Template
}

func New(build, version, urlRoot string, jukebox *jukebox.Jukebox) chi.Router {
	web := webUI{
		build:   build,
		version: version,
		urlRoot: urlRoot,
		jukebox: jukebox,
	}
	if build != "debug" {
		web.page = web.template()
	}

	service := chi.NewRouter()
	service.Use(util.LogHandler)
	service.Use(middleware.Compress(5))

	service.Get("/", web.playerPage)
	service.Mount("/static", http.StripPrefix("/static", web.staticHandler()))
	service.Route("/data", func(r chi.Router) {
		api.InitRouter(r, web.jukebox)
	})

	return service
}

// minifier strips whitespace from the assets as they are served. A debug
// build serves them untouched to keep stack traces and devtools readable.
func minifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

func (web *webUI) staticHandler() http.Handler {
	public, err := fs.Sub(webui.Files(web.build), "public")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(public))
	if web.build == "debug" {
		return fileServer
	}
	return minifier().Middleware(fileServer)
}

func (web *webUI) template() *template.Template {
	page, err := fs.ReadFile(webui.Files(web.build), "view/page.html")
	if err != nil {
		panic(err)
	}
	return template.Must(template.New("page").Parse(string(page)))
}

func (web *webUI) playerPage(w http.ResponseWriter, r *http.Request) {
	tmpl := web.page
	if tmpl == nil {
		// Debug builds re-read the template from disk on every request.
		tmpl = web.template()
	}
	params := map[string]interface{}{
		"urlroot": web.urlRoot,
		"version": web.version,
	}
	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, params); err != nil {
		log.Errorf("Could not render page: %v", err)
	}
}
