// The arbor follower: consumes broadcast insert events from Kafka and
// maintains a read-only replica of the leader's index.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"arbor/config"
	"arbor/index"
	"arbor/jobs/follower"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField("component", "main")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("config load failed")
		}
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		log.Fatal("kafka.brokers and kafka.topic must be configured")
	}

	replica := index.New()
	f := follower.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group, replica)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	// Periodic replica health line; followers have no API of their own.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.WithFields(logrus.Fields{
					"keys": replica.Len(),
					"seq":  replica.LastSeq(),
				}).Info("replica state")
			}
		}
	}()

	if err := f.Run(ctx); err != nil {
		log.WithError(err).Fatal("follower exited")
	}
}
