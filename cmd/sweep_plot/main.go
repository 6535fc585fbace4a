package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/components"

	"seasign-bias/plot"
	"seasign-bias/sweep"
)

func main() {
	in := flag.String("in", "results/entropy_sweep.csv", "sweep CSV produced by entropy_sweep")
	out := flag.String("out", "results/entropy_sweep.html", "HTML output path")
	title := flag.String("title", "Residual entropy vs. known signatures", "chart title")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open sweep: %v", err)
	}
	rows, err := sweep.ReadCSV(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse %s: %v", *in, err)
	}
	if len(rows) == 0 {
		log.Fatalf("no sweep rows in %s", *in)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].KnownSigs < rows[j].KnownSigs })

	page := components.NewPage().SetPageTitle(*title)
	page.AddCharts(plot.EntropyChart(rows, *title))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create dir: %v", err)
	}
	w, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer w.Close()
	if err := plot.RenderPage(w, page); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Printf("Wrote %s | points: %d\n", *out, len(rows))
}
