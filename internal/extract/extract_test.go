package extract

import (
	"testing"

	"github.com/varoOP/kinobot/internal/domain"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Page
	}{
		{
			name: "both present",
			html: `<html><body>
				<h1> Начало (2010) </h1>
				<div class="fdesc">
					<p>Кобб – талантливый вор,</p>
					<p>лучший из лучших</p>
				</div></body></html>`,
			want: Page{Title: "Начало (2010)", Description: "Кобб – талантливый вор, лучший из лучших"},
		},
		{
			name: "first heading wins",
			html: `<h1>One</h1><h1>Two</h1><div class="fdesc">d</div>`,
			want: Page{Title: "One", Description: "d"},
		},
		{
			name: "missing heading",
			html: `<div class="fdesc">only description</div>`,
			want: Page{Title: "Inception", Description: "only description"},
		},
		{
			name: "missing description",
			html: `<h1>Начало</h1><div class="other">x</div>`,
			want: Page{Title: "Начало", Description: domain.NoDescription},
		},
		{
			name: "blank heading",
			html: `<h1>   </h1>`,
			want: Page{Title: "Inception", Description: domain.NoDescription},
		},
		{
			name: "empty",
			html: "",
			want: Page{Title: "Inception", Description: domain.NoDescription},
		},
		{
			name: "garbage",
			html: "\x00\xff<<<>>>",
			want: Page{Title: "Inception", Description: domain.NoDescription},
		},
	}

	e := New(LordfilmSchema)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract([]byte(tt.html), "Inception")
			if got != tt.want {
				t.Fatalf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtract_CustomSchema(t *testing.T) {
	e := New(Schema{Title: "span.name", Description: "#about"})
	got := e.Extract([]byte(`<h1>ignored</h1><span class="name">Title</span><section id="about">About</section>`), "q")
	if got.Title != "Title" || got.Description != "About" {
		t.Fatalf("unexpected page %+v", got)
	}
}
