package player

import "html/template"

// The wrappers are deliberately self-contained fragments: the host page
// supplies the play/pause behavior, keyed off the class names and data
// attributes emitted here.

var passthroughTemplate = template.Must(template.New("passthrough").Parse(
	`<img class="gif-player gif-player-plain" src="{{.Source}}" alt="">`))

var gifTemplate = template.Must(template.New("gif").Parse(
	`<div class="gif-player gif-player-swap" data-animated-src="{{.Source}}">` +
		`<img class="gif-player-still" src="{{.Thumbnail}}" data-still-src="{{.Thumbnail}}" alt="">` +
		`<button class="gif-player-toggle" type="button" aria-label="Play animation"></button>` +
		`</div>`))

// rel:animated_src is the attribute name the canvas playback library
// reads; it is kept verbatim for compatibility.
var canvasTemplate = template.Must(template.New("canvas").Parse(
	`<img class="gif-player gif-player-canvas" src="{{.Thumbnail}}" ` +
		`rel:animated_src="{{.Source}}" rel:auto_play="0" alt="">`))

var videoTemplate = template.Must(template.New("video").Parse(
	`<video class="gif-player gif-player-video" poster="{{.Thumbnail}}" ` +
		`muted loop playsinline preload="metadata">` +
		`{{range .Videos}}<source src="{{.Location}}" type="{{.ContentType}}">{{end}}` +
		`<img src="{{.Thumbnail}}" alt="">` +
		`</video>`))
