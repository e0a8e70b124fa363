// Command quilldemo renders a demo scene through the renderer stack
// and writes it to a PNG. It exercises shapes, strokes, gradients,
// clipping and text without needing a window.
package main

import (
	"flag"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/quillui/quill"
	"github.com/quillui/quill/render"
	"github.com/quillui/quill/text"
)

func main() {
	var (
		width    = flag.Float64("width", 800, "logical width")
		height   = flag.Float64("height", 600, "logical height")
		scale    = flag.Float64("scale", 1.0, "device pixel scale")
		output   = flag.String("output", "demo.png", "output file")
		fontPath = flag.String("font", "", "TTF font for the text demo")
		software = flag.Bool("software", true, "force the software backend")
	)
	flag.Parse()

	var opts []render.Option
	if *software {
		opts = append(opts, render.ForceSoftware())
	}
	r, err := render.New(*scale, quill.SizeOf(*width, *height), opts...)
	if err != nil {
		log.Fatalf("create renderer: %v", err)
	}
	defer r.Release()
	log.Printf("rendering with %s backend", r.Backend())

	r.Begin(true)
	drawBackground(r, *width, *height)
	drawShapes(r)
	drawTransforms(r)
	drawPaths(r)
	drawClipped(r)
	if *fontPath != "" {
		drawText(r, *fontPath)
	}

	frame := r.Finish(nil)
	if frame == nil {
		log.Fatal("no frame captured")
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		log.Fatalf("encode png: %v", err)
	}
	log.Printf("demo saved to %s (%dx%d)", *output, frame.Rect.Dx(), frame.Rect.Dy())
}

func drawBackground(r *render.Renderer, w, h float64) {
	r.Fill(quill.NewRect(0, 0, w, h), quill.LinearGradient(
		quill.Pt(0, 0), quill.Pt(0, h),
		quill.ColorStop{Offset: 0, Color: quill.RGB(0.10, 0.12, 0.25)},
		quill.ColorStop{Offset: 1, Color: quill.RGB(0.30, 0.20, 0.35)},
	), 0)
}

func drawShapes(r *render.Renderer) {
	r.Fill(quill.Circle{Center: quill.Pt(150, 150), Radius: 60},
		quill.Solid(quill.RGBAOf(1, 0.3, 0.3, 0.8)), 0)
	r.Fill(quill.Circle{Center: quill.Pt(200, 150), Radius: 60},
		quill.Solid(quill.RGBAOf(0.3, 1, 0.3, 0.8)), 0)
	r.Fill(quill.Circle{Center: quill.Pt(175, 200), Radius: 60},
		quill.Solid(quill.RGBAOf(0.3, 0.3, 1, 0.8)), 0)

	r.Fill(quill.NewRoundedRect(quill.NewRect(350, 100, 470, 180), 15),
		quill.SolidRGB(1, 0.8, 0), 0)
	r.Stroke(quill.NewRect(350, 100, 470, 180), quill.SolidRGB(1, 1, 1), 4)

	// Drop shadow blur under a card.
	r.Fill(quill.NewRect(520, 105, 680, 185), quill.Solid(quill.RGBAOf(0, 0, 0, 0.5)), 8)
	r.Fill(quill.NewRect(515, 100, 675, 180), quill.SolidRGB(0.95, 0.95, 0.98), 0)
}

func drawTransforms(r *render.Renderer) {
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		m := quill.Translate(600, 350).Multiply(quill.Rotate(angle))
		r.Transform(m)
		t := float64(i) / 8
		r.Fill(quill.NewRect(20, -8, 110, 8),
			quill.Solid(quill.RGB(0.4+0.6*t, 0.9-0.5*t, 0.6)), 0)
	}
	r.Transform(quill.Identity())
}

func drawPaths(r *render.Renderer) {
	wave := quill.NewPath()
	wave.MoveTo(100, 420)
	for i := 0; i < 6; i++ {
		x := 100 + float64(i)*50
		ctrlY := 380.0
		if i%2 == 1 {
			ctrlY = 460.0
		}
		wave.QuadraticTo(x+25, ctrlY, x+50, 420)
	}
	r.Stroke(wave, quill.SolidRGB(1, 0.5, 0), 5)

	star := quill.NewPath()
	for i := 0; i <= 10; i++ {
		a := float64(i)*math.Pi/5 - math.Pi/2
		radius := 60.0
		if i%2 == 1 {
			radius = 26.0
		}
		x := 200 + radius*math.Cos(a)
		y := 520 + radius*math.Sin(a)
		if i == 0 {
			star.MoveTo(x, y)
		} else {
			star.LineTo(x, y)
		}
	}
	star.Close()
	r.Fill(star, quill.SolidRGB(1, 0.9, 0.2), 0)
}

func drawClipped(r *render.Renderer) {
	r.Clip(quill.NewRoundedRect(quill.NewRect(420, 420, 700, 560), 24))
	r.Fill(quill.NewRect(400, 400, 720, 580), quill.RadialGradient(
		quill.Pt(560, 490), 160,
		quill.ColorStop{Offset: 0, Color: quill.RGB(0.2, 0.8, 0.9)},
		quill.ColorStop{Offset: 1, Color: quill.RGB(0.05, 0.25, 0.5)},
	), 0)
	for i := 0; i < 12; i++ {
		x := 400 + float64(i)*30
		r.Stroke(quill.Line{P0: quill.Pt(x, 400), P1: quill.Pt(x+40, 580)},
			quill.Solid(quill.RGBAOf(1, 1, 1, 0.25)), 2)
	}
	r.ClearClip()
}

func drawText(r *render.Renderer, fontPath string) {
	source, err := text.NewFontSourceFromFile(fontPath)
	if err != nil {
		log.Printf("load font: %v", err)
		return
	}
	layout := text.NewLayout(source, "The quill renderer", 28,
		text.WithMaxWidth(400))
	r.DrawText(layout, quill.Pt(100, 40))
}
