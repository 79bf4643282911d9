package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"hydroroute"
	"hydroroute/debug"
	"hydroroute/metrics"
)

func main() {
	var (
		configFile = flag.String("config", "project.yaml", "项目文件")
		reportFile = flag.String("report", "", "报告文件,默认输出到标准输出")
		plotFile   = flag.String("plot", "", "流量过程线图片文件 (.png/.svg/.pdf)")
		addr       = flag.String("serve", "", "运行结束后在该地址发布图表与报告,例如 :8080")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	charts := &debug.Charts{}
	p, err := hydroroute.Simulate(ctx, *configFile, func(p *hydroroute.Project) {
		p.Debug = charts
		p.Observer = &metrics.Observer{Model: p.Settings.RouteModel.String()}
	})
	if err != nil {
		log.Println(err)
	}

	out := os.Stdout
	if *reportFile != "" {
		f, err := os.Create(*reportFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	if err := p.WriteReport(out); err != nil && err != p.Err {
		log.Println(err)
	}
	if p.Err != nil && *addr == "" {
		os.Exit(1)
	}

	if *plotFile != "" && p.Err == nil {
		if err := savePlot(charts, *plotFile); err != nil {
			log.Println(err)
		}
	}

	if *addr == "" {
		return
	}
	r := mux.NewRouter()
	r.HandleFunc("/charts", charts.Handler).Methods("GET")
	r.HandleFunc("/record", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := charts.Record.Render(w); err != nil {
			charts.Error(err)
		}
	}).Methods("GET")
	r.HandleFunc("/report", p.Report().Handler).Methods("GET")
	r.HandleFunc("/hydrograph.png", func(w http.ResponseWriter, _ *http.Request) {
		plt, err := charts.Hydrograph()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := debug.WritePNG(plt, w); err != nil {
			charts.Error(err)
		}
	}).Methods("GET")
	if p.Router != nil {
		r.HandleFunc("/timesteps.png", func(w http.ResponseWriter, _ *http.Request) {
			plt, err := debug.StepHistogram(p.Router.TimeSteps)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			if err := debug.WritePNG(plt, w); err != nil {
				charts.Error(err)
			}
		}).Methods("GET")
	}
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: *addr, Handler: r}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	fmt.Printf("\n  Serving on %s\n", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func savePlot(charts *debug.Charts, filename string) error {
	plt, err := charts.Hydrograph()
	if err != nil {
		return err
	}
	return debug.SavePlot(plt, filename)
}
