package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"vmaxtui/internal/config"
	"vmaxtui/internal/convert"
	"vmaxtui/internal/indexdb"
	"vmaxtui/internal/render"
	"vmaxtui/internal/sched"
	"vmaxtui/internal/status"
	"vmaxtui/internal/vmax/container"
	"vmaxtui/internal/watch"
)

func main() {
	var (
		input      = flag.String("input", "", "convert one .vmax directory and exit")
		output     = flag.String("output", "", "output path for -input (default: sibling .bsz)")
		watchDir   = flag.String("watch", "", "directory tree to watch (overrides config)")
		configPath = flag.String("config", "", "path to yaml config (optional)")
		indexPath  = flag.String("index", "", "run-history sqlite path (overrides config)")
		statusAddr = flag.String("status", "", "status feed listen address (overrides config)")

		licenseInfo = flag.Bool("licenseinfo", false, "print render engine license info and exit")
		thirdParty  = flag.Bool("thirdparty", false, "print render engine third-party notices and exit")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[vmaxtui] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *watchDir != "" {
		cfg.WatchDir = *watchDir
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}
	if *statusAddr != "" {
		cfg.StatusAddr = *statusAddr
	}

	if *licenseInfo || *thirdParty {
		arg := "--licenseInfo"
		if *thirdParty {
			arg = "--thirdParty"
		}
		if err := passThrough(cfg.Engine.Bin, arg); err != nil {
			logger.Fatalf("%s %s: %v", cfg.Engine.Bin, arg, err)
		}
		return
	}

	conv := &convert.Converter{
		Log: log.New(os.Stdout, "[convert] ", log.LstdFlags|log.Lmicroseconds),
		Dec: container.ZstdDecoder,
	}

	if *input != "" {
		out := *output
		if out == "" {
			out = convert.OutputPath(*input)
		}
		res, err := conv.ConvertTo(*input, out)
		if err != nil {
			logger.Fatalf("convert %s: %v", *input, err)
		}
		fmt.Printf("%s: %d models, %d voxels -> %s\n", *input, res.Models, res.Voxels, res.OutPath)
		return
	}

	runWatch(cfg, conv, logger)
}

func passThrough(bin, arg string) error {
	cmd := exec.Command(bin, arg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func runWatch(cfg config.Config, conv *convert.Converter, logger *log.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queues := watch.NewQueues()
	router := watch.NewRouter(queues, watch.Rules{
		SceneSuffix:   cfg.SceneSuffix,
		ModelSuffix:   cfg.ModelSuffix,
		ArchiveSuffix: cfg.ArchiveSuffix,
		StagingDir:    cfg.StagingDir,
	}, log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds))

	watcher, err := watch.NewWatcher(router, log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("watcher: %v", err)
	}
	if err := watcher.AddRecursive(cfg.WatchDir); err != nil {
		logger.Fatalf("watch %s: %v", cfg.WatchDir, err)
	}
	logger.Printf("watching: %s", cfg.WatchDir)

	engine := &render.ExecEngine{
		Bin: cfg.Engine.Bin,
		Args: []string{
			"-res", fmt.Sprintf("%dx%d", cfg.Engine.Resolution[0], cfg.Engine.Resolution[1]),
		},
		Log: log.New(os.Stdout, "[render] ", log.LstdFlags|log.Lmicroseconds),
	}
	engine.Args = append(engine.Args, cfg.Engine.Args...)

	scheduler := sched.New(queues, engine, conv.Convert, sched.Suffixes{
		Scene: cfg.SceneSuffix,
		Model: cfg.ModelSuffix,
	}, cfg.PollInterval(), log.New(os.Stdout, "[sched] ", log.LstdFlags|log.Lmicroseconds))

	if cfg.IndexPath != "" {
		idx, err := indexdb.OpenSQLite(cfg.IndexPath)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		scheduler.Index = idx
	}

	var statusSrv *http.Server
	if cfg.StatusAddr != "" {
		feed := status.NewFeed(log.New(os.Stdout, "[status] ", log.LstdFlags|log.Lmicroseconds))
		scheduler.Status = feed

		mux := http.NewServeMux()
		mux.Handle("/v1/status", feed.Handler())
		statusSrv = &http.Server{Addr: cfg.StatusAddr, Handler: mux}
		go func() {
			logger.Printf("status feed: ws://%s/v1/status", cfg.StatusAddr)
			if err := statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("status feed: %v", err)
			}
		}()
	}

	go watcher.Run(ctx)
	go scheduler.Run(ctx)

	<-ctx.Done()
	logger.Printf("shutting down")

	// Stop taking new events, then give in-flight queue handoffs a moment to
	// settle before tearing the process down.
	router.Stop()
	time.Sleep(200 * time.Millisecond)

	if statusSrv != nil {
		shctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = statusSrv.Shutdown(shctx)
	}
}
