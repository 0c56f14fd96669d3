package main

import (
	"log"
	"net/http"

	"planner/internal/config"
	"planner/internal/serverapp"
	"planner/internal/store"
)

func main() {
	cfg, err := config.LoadOrDefault("planner_config.yml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg = config.FromEnv(cfg)

	opts := serverapp.Options{
		Config:        cfg,
		StaticDir:     "static",
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        log.Default(),
	}

	if cfg.Database.DSN != "" {
		st, err := store.Open(cfg.Database.DSN, log.Default())
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		opts.Store = st
	} else {
		log.Printf("no database DSN configured; using in-memory storage")
	}

	handler, err := serverapp.NewHandler(opts)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
