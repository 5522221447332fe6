package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/catalog"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/compare"
	"github.com/tosih/rpm-simulator/pkg/config"
	"github.com/tosih/rpm-simulator/pkg/databases"
	"github.com/tosih/rpm-simulator/pkg/editor"
	"github.com/tosih/rpm-simulator/pkg/export"
	"github.com/tosih/rpm-simulator/pkg/guide"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/notify"
	"github.com/tosih/rpm-simulator/pkg/renderer"
	"github.com/tosih/rpm-simulator/pkg/selector"
	"github.com/tosih/rpm-simulator/pkg/store"
	"github.com/tosih/rpm-simulator/pkg/sweep"
	"github.com/tosih/rpm-simulator/pkg/web"
)

const (
	recorderBuffer   = 64
	redlineCooldown  = time.Minute
	defaultSweepStep = 5
)

var (
	configPath  = flag.String("config", "", "Configuration file (default $HOME/.rpmsim_conf.json)")
	webMode     = flag.Bool("web", false, "Start the web interface")
	port        = flag.Int("port", 0, "Web server port (overrides config)")
	noBrowser   = flag.Bool("no-browser", false, "Do not open a browser in web mode")
	listPresets = flag.Bool("presets", false, "List built-in presets")
	listRefs    = flag.Bool("references", false, "List common axle ratios and tire sizes")
	listMakes   = flag.Bool("makes", false, "List the makes in the vehicle catalog")
	catalogMake = flag.String("make", "", "List every vehicle of a make")
	checkCat    = flag.Bool("check-catalog", false, "Load and validate every make in the vehicle catalog")
	guideTopic  = flag.String("guide", "", "Show a driving guide topic, or 'all' to list them")
	sweepMode   = flag.Bool("sweep", false, "Show an RPM sweep for the current vehicle")
	sweepMin    = flag.Float64("min", 0, "Sweep start speed (MPH)")
	sweepMax    = flag.Float64("max", 120, "Sweep end speed (MPH)")
	sweepStep   = flag.Float64("step", defaultSweepStep, "Sweep speed step (MPH)")
	exportPath  = flag.String("export", "", "Export RPM sweeps of the current vehicle and all presets to CSV files in this directory")
	importPath  = flag.String("import", "", "Load vehicle parameters from an exported CSV file")
	comparePair = flag.String("compare", "", "Compare two vehicles: 'a,b' where each is a preset key or 'current'")
	editMode    = flag.Bool("edit", false, "Edit the simulation interactively")
	dump        = flag.Bool("dump", false, "Dump the full simulator state")
	speed       = flag.Float64("speed", -1, "Set the speed (MPH)")
	gear        = flag.Int("gear", 0, "Select a gear")
	preset      = flag.String("preset", "", "Apply a built-in preset")
)

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()

	if err := run(); err != nil {
		pterm.Error.Println(err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func run() error {
	conf, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	glog.V(1).Infof("Configuration: %+v", conf.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, statePath, closeStorage, err := openStorage(conf.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	repo, err := openCatalog(conf.CatalogDir)
	if err != nil {
		return err
	}

	clk := clock.NewReal()
	sim := store.New(storage, conf.Thresholds)
	sel := selector.New(repo, sim)

	if conf.InfluxDb.Enabled() {
		db, err := databases.OpenInfluxDbDatabase(conf.InfluxDb.Address, conf.InfluxDb.Username, conf.InfluxDb.Password, conf.InfluxDb.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		recorder := databases.NewRecorder(db, clk, recorderBuffer)
		sim.AddChangeListener(recorder.Record)
		recorderCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			recorder.Run(recorderCtx)
			close(done)
		}()
		defer func() {
			cancel()
			<-done
		}()
	}
	if conf.Pushover.Enabled() {
		alerter := notify.NewRedlineAlerter(notify.NewPushoverFacade(conf.Pushover.Token, conf.Pushover.User), clk, redlineCooldown)
		sim.AddChangeListener(alerter.Listener())
		defer alerter.Wait()
	}

	<-sel.Resume(ctx)

	switch {
	case *listPresets:
		renderer.ListPresets()
		return nil
	case *listRefs:
		renderer.ListReferences()
		return nil
	case *listMakes:
		renderer.ListMakes(repo.ListMakes())
		return nil
	case *checkCat:
		makes := repo.ListMakes()
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Loading %d makes...", len(makes)))
		if err := repo.Preload(ctx, makes...); err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success(fmt.Sprintf("All %d makes loaded", len(makes)))
		return nil
	case *catalogMake != "":
		c, err := repo.LoadMake(ctx, *catalogMake)
		if err != nil {
			return err
		}
		renderer.ListCatalog(c)
		return nil
	case *guideTopic != "":
		return showGuide(*guideTopic)
	}

	if err := applyFlags(sim); err != nil {
		return err
	}

	switch {
	case *webMode:
		p := conf.Web.Port
		if *port != 0 {
			p = *port
		}
		return web.NewServer(ctx, sim, sel, p, conf.Web.OpenBrowser && !*noBrowser).Start()
	case *editMode:
		editor.New(sim, sel, clk, statePath).InteractiveEdit(ctx)
		return nil
	case *comparePair != "":
		return runCompare(sim, *comparePair)
	case *exportPath != "":
		return runExport(sim, *exportPath)
	case *sweepMode:
		speeds, err := sweep.Speeds(*sweepMin, *sweepMax, *sweepStep)
		if err != nil {
			return err
		}
		state := sim.State()
		renderer.RenderSweep(sweep.Build(renderer.Title(state), state.Spec(), speeds, state.Thresholds))
		return nil
	case *dump:
		spew.Dump(sim.State())
		return nil
	}

	renderer.RenderState(sim.State())
	return nil
}

func openStorage(c config.StorageConfig) (store.Storage, string, func(), error) {
	nop := func() {}
	switch c.Backend {
	case config.BackendMemory:
		return store.NewMemoryStorage(), "", nop, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(c.Path, 0755); err != nil {
			return nil, "", nop, errors.Wrapf(err, "cannot create state directory %s", c.Path)
		}
		s, err := store.OpenSQLiteStorage(filepath.Join(c.Path, "state.db"))
		if err != nil {
			return nil, "", nop, err
		}
		return s, "", func() { s.Close() }, nil
	default:
		s, err := store.NewFileStorage(c.Path)
		if err != nil {
			return nil, "", nop, err
		}
		return s, s.Path(store.StorageKey), nop, nil
	}
}

func openCatalog(dir string) (*catalog.Repository, error) {
	if dir == "" {
		return catalog.NewRepository(catalog.Bundled())
	}
	glog.Infof("Using vehicle catalog at %s", dir)
	return catalog.NewRepository(os.DirFS(dir))
}

// applyFlags runs the one-shot transitions given on the command line, in a fixed order.
func applyFlags(sim *store.Simulator) error {
	if *importPath != "" {
		if err := importSpec(sim, *importPath); err != nil {
			return err
		}
	}
	if *preset != "" {
		if err := sim.ApplyPreset(*preset); err != nil {
			return err
		}
	}
	if *gear != 0 {
		if err := sim.SetSelectedGear(*gear); err != nil {
			return err
		}
	}
	if *speed >= 0 {
		sim.SetSpeed(*speed)
	}
	return nil
}

func importSpec(sim *store.Simulator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", path)
	}
	defer f.Close()

	spec, err := export.ReadSpec(f)
	if err != nil {
		return errors.Wrapf(err, "cannot import %s", path)
	}
	if err := sim.SetGearCount(spec.GearCount); err != nil {
		return err
	}
	for i, r := range spec.GearRatios {
		if err := sim.SetGearRatio(i, r); err != nil {
			return err
		}
	}
	sim.SetAxleRatio(spec.AxleRatio)
	sim.SetTireDiameter(spec.TireDiameter)
	pterm.Success.Printf("Imported %d-speed from %s\n", spec.GearCount, path)
	return nil
}

func showGuide(key string) error {
	if key == "all" {
		renderer.ListGuide(guide.Topics())
		return nil
	}
	topic, ok := guide.Find(key)
	if !ok {
		return errors.Errorf("unknown guide topic %q", key)
	}
	renderer.RenderGuide(topic)
	return nil
}

func vehicleByKey(sim *store.Simulator, key string) (compare.Vehicle, error) {
	if key == "current" {
		state := sim.State()
		return compare.Vehicle{Name: renderer.Title(state), Spec: state.Spec()}, nil
	}
	p, ok := models.FindPreset(key)
	if !ok {
		return compare.Vehicle{}, errors.Wrapf(store.ErrUnknownPreset, "%q", key)
	}
	return compare.Vehicle{Name: p.Name, Spec: p.Spec}, nil
}

func runCompare(sim *store.Simulator, pair string) error {
	keys := strings.Split(pair, ",")
	if len(keys) != 2 {
		return errors.Errorf("-compare needs two comma-separated vehicles, got %q", pair)
	}
	a, err := vehicleByKey(sim, strings.TrimSpace(keys[0]))
	if err != nil {
		return err
	}
	b, err := vehicleByKey(sim, strings.TrimSpace(keys[1]))
	if err != nil {
		return err
	}
	state := sim.State()
	compare.Display(compare.Vehicles(a, b, state.Speed), state.Thresholds)
	return nil
}

func runExport(sim *store.Simulator, dir string) error {
	speeds, err := sweep.Speeds(*sweepMin, *sweepMax, *sweepStep)
	if err != nil {
		return err
	}
	state := sim.State()
	tables := []sweep.Table{sweep.Build(fmt.Sprintf("current %s", renderer.Title(state)), state.Spec(), speeds, state.Thresholds)}
	for _, p := range models.Presets {
		tables = append(tables, sweep.Build(p.Name, p.Spec, speeds, state.Thresholds))
	}
	return export.SweepsToDir(dir, tables)
}
