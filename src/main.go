package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"muzik/src/handler/web"
	"muzik/src/jukebox"
	"muzik/src/library"
	"muzik/src/library/local"
	"muzik/src/library/spotify"
	"muzik/src/library/subsonic"
	"muzik/src/player"
)

const confFile = "config.yaml"

var (
	build   = "release"
	version = "%VERSION%"
)

type config struct {
	Address string `yaml:"bind"`
	URLRoot string `yaml:"url_root"`

	Database   string `yaml:"database"`
	StorageURL string `yaml:"storage_url"`

	DefaultVolume float32 `yaml:"default_volume"`

	Subsonic *struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"subsonic"`

	Spotify *struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"spotify"`
}

func (conf *config) Validate() (errs []error) {
	if conf.Address == "" {
		errs = append(errs, fmt.Errorf("config: `bind` is required"))
	}
	if conf.Database == "" && conf.Subsonic == nil && conf.Spotify == nil {
		errs = append(errs, fmt.Errorf("config: no track sources configured"))
	}
	if conf.Database != "" && conf.StorageURL == "" {
		errs = append(errs, fmt.Errorf("config: `storage_url` is required alongside `database`"))
	}
	if conf.Subsonic != nil && (conf.Subsonic.URL == "" || conf.Subsonic.Username == "") {
		errs = append(errs, fmt.Errorf("config: `subsonic` requires `url` and `username`"))
	}
	if conf.Spotify != nil && (conf.Spotify.ClientID == "" || conf.Spotify.ClientSecret == "" || conf.Spotify.RedirectURL == "") {
		errs = append(errs, fmt.Errorf("config: `spotify` requires `client_id`, `client_secret` and `redirect_url`"))
	}
	return
}

func LoadConfig(filename string) (*config, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	var conf config
	if err := d.Decode(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func main() {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}

	configFile := flag.String("conf", confFile, "Path to the configuration file")
	printVersion := flag.Bool("version", false, "Print version information and exit")
	logLevel := flag.String("log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")
	flag.Parse()

	if ll, err := log.ParseLevel(*logLevel); err != nil {
		log.Fatalf("Could not parse log level: %v", err)
	} else {
		log.SetLevel(ll)
	}
	log.SetReportCaller(true)

	if *printVersion {
		fmt.Printf("Version: %v\n", version)
		fmt.Printf("Build: %v\n", build)
		return
	}

	log.Infof("Version: %v (%v)", version, build)
	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		log.Fatalf("Could not load config: %v", errs)
	}

	ctx := context.Background()

	var store *local.Store
	var storeIface library.Store
	if config.Database != "" {
		store, err = local.New(ctx, config.Database, config.StorageURL)
		if err != nil {
			log.Fatalf("Could not open the song database: %v", err)
		}
		storeIface = store
		log.Infof("Using song database %q", config.Database)
	}

	var server *subsonic.Client
	var serverIface library.Server
	if config.Subsonic != nil {
		server = subsonic.NewClient(config.Subsonic.URL, config.Subsonic.Username, config.Subsonic.Password)
		serverIface = server
		if err := server.Ping(ctx); err != nil {
			log.Warnf("Media server is not reachable: %v", err)
		} else {
			log.Infof("Connected to media server at %v", config.Subsonic.URL)
		}
	}

	var streaming *spotify.Client
	var streamingIface library.Streaming
	var spotifyEngine player.AudioEngine
	if config.Spotify != nil {
		streaming = spotify.NewClient(config.Spotify.ClientID, config.Spotify.ClientSecret, config.Spotify.RedirectURL)
		streamingIface = streaming
		spotifyEngine = player.NewSpotifyEngine(streaming)
		log.Info("Streaming service configured, awaiting account link")
	}

	resolver := library.NewResolver(storeIface, serverIface, streamingIface)
	locator := library.NewLocator(storeIface, config.URLRoot)

	pl := player.New(player.NewQueue(), resolver, locator, player.NewNativeEngine(), spotifyEngine, serverIface)
	if config.DefaultVolume > 0 {
		pl.SetVolume(ctx, config.DefaultVolume)
	}

	jukebox := jukebox.New(pl, resolver, locator, store, server, streaming)

	service := web.New(build, version, config.URLRoot, jukebox)
	if build == "debug" {
		service.Get("/debug/pprof/*", pprof.Index)
	}

	log.Infof("Now accepting HTTP connections on %v", config.Address)
	httpServer := &http.Server{
		Addr:           config.Address,
		Handler:        service,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Fatalf("Error running webserver: %v", httpServer.ListenAndServe())
}
