package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"glidecore/internal/api"
	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/core"
	"glidecore/pkg/db"
	"glidecore/pkg/geo"
	"glidecore/pkg/logging"
	"glidecore/pkg/olc"
	"glidecore/pkg/polar"
	"glidecore/pkg/probe"
	"glidecore/pkg/sim/mocksim"
	"glidecore/pkg/store"
	"glidecore/pkg/terrain"
	"glidecore/pkg/thermal"
	"glidecore/pkg/tracker"
	"glidecore/pkg/version"
)

const (
	defaultConfigPath = "configs/glidecore.yaml"
	// maxConnections caps concurrent API connections, stream clients included.
	maxConnections = 64
)

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("glidecore started", "version", version.Version, "dev", version.Dev())

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	prov := config.NewProvider(appCfg, st)
	tr := tracker.New()

	heights, closeTerrain := initTerrain(appCfg)
	defer closeTerrain()

	startPos := geo.Point{Lat: prov.MockStartLat(ctx), Lon: prov.MockStartLon(ctx)}
	results := probe.Run(ctx, []probe.Probe{
		probe.Database(st),
		probe.Rules(prov.Rules(ctx)),
		probe.Terrain(heights, startPos),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	comp := computer.New(computer.Options{
		OLC:          olcSettings(appCfg),
		Rules:        initialRules(ctx, prov),
		Thermal:      thermal.Settings{AgreementRadius: float64(appCfg.Thermal.AgreementRadius), MinWeight: appCfg.Thermal.MinWeight},
		Sources:      appCfg.Thermal.Sources,
		H3Resolution: appCfg.Thermal.H3Resolution,
		Terrain:      heights,
		Polar:        initPolar(appCfg),
		Tracker:      tr,
	})

	var resume *mocksim.Resume
	if fs, ok := core.ResumeFlight(ctx, st, prov, comp); ok {
		resume = &mocksim.Resume{Time: fs.LastTime, Location: fs.Location, Altitude: fs.Altitude, Flying: fs.Flying}
	}

	mc := appCfg.Sim.Mock
	simClient := mocksim.NewClient(mocksim.Config{
		StartLat:     startPos.Lat,
		StartLon:     startPos.Lon,
		StartAlt:     prov.MockStartAlt(ctx),
		StartHeading: mc.StartHeading,
		WindSpeed:    mc.WindSpeed,
		WindBearing:  mc.WindBearing,
		LegLength:    float64(mc.LegLength),
		Speedup:      mc.Speedup,
		Seed:         mc.Seed,
		Terrain:      heights,
		Resume:       resume,
	})
	defer simClient.Close()
	slog.Info("Sim Source: Mock", "provider", prov.SimProvider(ctx))

	telH := api.NewTelemetryHandler()

	persistence := core.NewFlightPersistenceJob(st, prov, comp)

	sched := core.NewScheduler(appCfg, simClient, comp, telH)
	sched.AddJob(core.NewContestJob(prov, comp))
	sched.AddJob(core.NewLandingJob(persistence))
	sched.AddJob(core.NewEvictionJob(prov, dbConn))

	srv := api.NewServer(appCfg.Server.Address, api.Handlers{
		Telemetry: telH,
		Contest:   api.NewContestHandler(comp),
		Thermal:   api.NewThermalHandler(comp),
		Config:    api.NewConfigHandler(st, prov),
		Stats:     api.NewStatsHandler(tr, comp, telH),
		Flights:   api.NewFlightsHandler(st, comp.FlightID),
	}, cancel)
	srv.Handler = loggingMiddleware(srv.Handler)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(gctx)
		return nil
	})
	persistence.Start(gctx)
	g.Go(func() error {
		slog.Info("Starting server", "addr", srv.Addr, "max_conns", maxConnections)
		if err := srv.Serve(netutil.LimitListener(ln, maxConnections)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// last snapshot so a restart resumes where we stopped
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer saveCancel()
	if prov.ResumeEnabled(saveCtx) {
		if _, serr := persistence.SaveNow(saveCtx); serr != nil {
			slog.Error("Final flight save failed", "error", serr)
		}
	}
	return err
}

func initDB(appCfg *config.Config) (*db.DB, *store.SQLiteStore, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// initTerrain loads the elevation grid behind an LRU cache. Without the
// file, thermal bases and AGL are not computed.
func initTerrain(cfg *config.Config) (terrain.HeightGetter, func()) {
	path := cfg.Terrain.ElevationFile
	if path == "" {
		slog.Info("Terrain: no elevation file configured")
		return nil, func() {}
	}
	grid, err := terrain.NewElevationProvider(path)
	if err != nil {
		slog.Info("Terrain: elevation data not found or invalid", "path", path, "error", err)
		return nil, func() {}
	}
	slog.Info("Terrain: elevation data loaded", "path", path)
	cached := terrain.NewCached(grid, cfg.Terrain.CacheSize, time.Duration(cfg.Terrain.CacheTTL))
	return cached, func() { _ = grid.Close() }
}

func initPolar(cfg *config.Config) *polar.Polar {
	s := cfg.Polar.Samples
	if len(s) != 3 {
		return polar.Default()
	}
	p, err := polar.FromSamples(
		polar.Sample{Speed: s[0].Speed, Sink: s[0].Sink},
		polar.Sample{Speed: s[1].Speed, Sink: s[1].Sink},
		polar.Sample{Speed: s[2].Speed, Sink: s[2].Sink},
	)
	if err != nil {
		slog.Warn("Invalid polar samples, using default polar", "error", err)
		return polar.Default()
	}
	return p
}

func olcSettings(cfg *config.Config) olc.Settings {
	s := olc.DefaultSettings()
	c := cfg.OLC
	s.Handicap = c.Handicap
	s.MinDistance = float64(c.MinDistance)
	s.MinTimeStep = time.Duration(c.MinTimeStep)
	s.SprintWindow = time.Duration(c.SprintWindow)
	s.FinishRadius = float64(c.FinishRadius)
	s.CloseFraction = c.CloseFraction
	s.MinLegFraction = c.MinLegFraction
	s.LargeTriangleThreshold = c.LargeTriangleThreshold.Meters()
	s.HeightAllowance = c.HeightAllowance.Meters()
	s.TriangleBonus = c.TriangleBonus
	s.PendingLimit = c.PendingLimit
	s.Predict = c.Predict
	return s
}

func initialRules(ctx context.Context, prov config.Provider) olc.Rules {
	r, err := olc.ParseRules(prov.Rules(ctx))
	if err != nil {
		slog.Warn("Unknown contest rules, using sprint", "error", err)
		return olc.Sprint
	}
	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
