// The arbor server: a durable red-black tree index behind a gRPC API.
// Inserts flow WAL first, then into the tree; an optional broadcaster
// publishes every accepted insert to Kafka through a pebble outbox.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"arbor/api/grpcserver"
	"arbor/api/wire"
	"arbor/config"
	"arbor/index"
	"arbor/jobs/broadcaster"
	"arbor/outbox"
	"arbor/service"
	"arbor/snapshot"
	"arbor/wal"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("component", "main")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("config load failed")
		}
	}

	// ---------------- WAL ----------------

	segmentAge, _ := cfg.SegmentAge()
	w, err := wal.Open(wal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
		SegmentAge:  segmentAge,
	})
	if err != nil {
		log.WithError(err).Fatal("WAL init failed")
	}
	defer w.Close()

	// ---------------- Replay ----------------

	ix := index.New()
	if _, err := service.Replay(cfg.WAL.Dir, cfg.Snapshot.Dir, nil, ix); err != nil {
		log.WithError(err).Fatal("replay failed")
	}

	// ---------------- Outbox + broadcaster ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out *outbox.Outbox
	if cfg.Kafka.Enabled {
		out, err = outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			log.WithError(err).Fatal("outbox init failed")
		}
		defer out.Close()

		interval, _ := cfg.BroadcastInterval()
		bc, err := broadcaster.New(out, cfg.Kafka.Brokers, cfg.Kafka.Topic, interval)
		if err != nil {
			log.WithError(err).Fatal("broadcaster init failed")
		}
		defer bc.Close()
		go bc.Start(ctx)
	}

	// ---------------- Service ----------------

	svc := service.New(ix, w, out, &snapshot.Writer{Dir: cfg.Snapshot.Dir})

	// ---------------- Background snapshots ----------------

	if interval, _ := cfg.SnapshotInterval(); interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := svc.WriteSnapshot(); err != nil {
						log.WithError(err).Warn("snapshot failed")
					}
				}
			}
		}()
	}

	// ---------------- Metrics ----------------

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.WithError(err).Error("metrics server exited")
			}
		}()
		log.WithField("addr", cfg.MetricsAddr).Info("metrics listening")
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.WithError(err).Fatal("listen failed")
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(wire.Codec{}))
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		cancel()
		grpcSrv.GracefulStop()
		if err := svc.Sync(); err != nil {
			log.WithError(err).Warn("final WAL sync failed")
		}
		if err := svc.WriteSnapshot(); err != nil {
			log.WithError(err).Warn("final snapshot failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr": cfg.ListenAddr,
		"keys": svc.Len(),
		"seq":  svc.LastSeq(),
	}).Info("arbor serving")

	if err := grpcSrv.Serve(lis); err != nil {
		log.WithError(err).Fatal("gRPC server exited")
	}
}
