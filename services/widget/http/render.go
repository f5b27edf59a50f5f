package http

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/Masterminds/sprig/v3"
	"github.com/gin-gonic/gin"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Weather App"

// pageData is what index.html renders.
type pageData struct {
	Title string
	City  string
	View  weather.View
}

// renderer executes the widget template and minifies the result.
type renderer struct {
	tmpl *template.Template
	min  *minify.M
}

func newRenderer() (*renderer, error) {
	tmpl, err := template.New("widget").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)

	return &renderer{tmpl: tmpl, min: m}, nil
}

func (r *renderer) page(c *gin.Context, status int, data pageData) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Printf("render widget: %v", err)
		c.String(http.StatusInternalServerError, "render error")
		return
	}

	out, err := r.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		log.Printf("minify widget: %v", err)
		out = buf.Bytes()
	}
	c.Data(status, "text/html; charset=utf-8", out)
}
