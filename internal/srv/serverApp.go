package srv

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/jypelle/minerdeck/internal/srv/config"
	"github.com/jypelle/minerdeck/internal/srv/device"
	"github.com/jypelle/minerdeck/internal/srv/display"
	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/jypelle/minerdeck/internal/version"
	"github.com/sirupsen/logrus"
)

const (
	probeTimeout         = 2 * time.Second
	workerStopTimeout    = 15 * time.Second
	longPressStepCount   = 10
	defaultDrawElapsedMs = 1000
)

type ServerApp struct {
	*config.ServerConfig
	startTime time.Time
	clock     clock.Source

	connectivity monitor.Connectivity
	netProbe     *device.NetProbe
	miner        *device.Miner
	timeKeeper   *monitor.TimeKeeper
	monitor      *monitor.Monitor
	display      *display.Display
	virtual      *display.VirtualDriver

	tickerDevice  *device.Ticker
	buttonsDevice *device.Buttons
	inputDevice   *device.Input
	apiDevice     *device.Api

	ctx    context.Context
	cancel context.CancelFunc

	lastDraw     uint32
	lastDrawSeen bool

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {
	logrus.Debugf("Creation of minerdeck server %s ...", version.AppVersion.String())

	serverConfig := config.NewServerConfig(configDir, debugMode, simulationMode)

	var connectivity monitor.Connectivity = device.AlwaysConnected{}
	var netProbe *device.NetProbe
	if serverConfig.Connectivity.Mode == config.PING_CONNECTIVITY {
		netProbe = device.NewNetProbe(
			serverConfig.Connectivity.Host,
			time.Duration(serverConfig.Connectivity.IntervalSeconds)*time.Second,
			device.PingProbe(serverConfig.Connectivity.Privileged, probeTimeout))
		connectivity = netProbe
	}

	app := newServerApp(serverConfig, clock.NewSystem(), connectivity, ntp.Time)
	app.netProbe = netProbe

	if serverConfig.Buttons.Enabled && !simulationMode {
		app.buttonsDevice = device.NewButtons(true, device.ButtonPins{
			Next:     serverConfig.Buttons.NextPin,
			Previous: serverConfig.Buttons.PreviousPin,
		})
	}
	if serverConfig.Input.Enabled && !simulationMode {
		app.inputDevice = device.NewInput(serverConfig.Input.Device)
	}
	if serverConfig.ApiParam.Enabled {
		var frame device.FrameFunc
		if app.virtual != nil {
			frame = app.virtual.FramePNG
		}
		app.apiDevice = device.NewApi(serverConfig.ConfigDir, serverConfig.ApiParam, app.Status, frame)
	}

	logrus.Debugln("Server created")
	return app
}

// newServerApp wires the hardware independent parts
func newServerApp(serverConfig *config.ServerConfig, clk clock.Source, connectivity monitor.Connectivity, timeQuery monitor.TimeQuery) *ServerApp {
	app := &ServerApp{
		ServerConfig:     serverConfig,
		startTime:        time.Now(),
		clock:            clk,
		connectivity:     connectivity,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	app.miner = device.NewMiner(serverConfig.SimulationMode, serverConfig.Miner.SimulatedHashrateKhs)
	app.timeKeeper = monitor.NewTimeKeeper(serverConfig.Ntp.Host, serverConfig.NtpRefresh(), serverConfig.Timezone, clk, connectivity, timeQuery)
	app.monitor = monitor.NewMonitor(serverConfig.MonitorConfig(), clk, connectivity, app.miner, app.timeKeeper)

	driver, err := display.NewDriver(serverConfig.Display.Driver, app.monitor, serverConfig.DisplayOptions(serverConfig.SimulationMode))
	if err != nil {
		logrus.Fatalf("Unable to create display driver: %v\n", err)
	}
	app.useDriver(driver)

	app.tickerDevice = device.NewTicker(time.Duration(serverConfig.Display.CycleSeconds) * time.Second)
	return app
}

func (s *ServerApp) useDriver(driver display.Driver) {
	s.display = display.New(driver, s.clock, s.ScreensaverMinutes())
	s.virtual = nil
	if v, ok := driver.(interface{ Virtual() *display.VirtualDriver }); ok {
		s.virtual = v.Virtual()
	}
}

func (s *ServerApp) initDisplay() {
	if err := s.display.Init(); err != nil {
		logrus.Errorf("%v, falling back to %s display", err, display.NONE_DRIVER)
		s.useDriver(display.NewNoneDriver(s.monitor))
		if err = s.display.Init(); err != nil {
			logrus.Fatalf("Unable to init display: %v\n", err)
		}
	}
	if !s.display.SetCurrentScreen(s.LastScreen()) {
		s.display.ResetToFirstScreen()
	}
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting minerdeck server ...")

	s.initDisplay()
	s.display.DrawLoadingScreen()

	logrus.Printf("Starting devices ...")

	if s.netProbe != nil {
		s.netProbe.Start()
	}
	s.miner.Start()

	if err := s.monitor.Start(s.ctx); err != nil {
		logrus.Errorf("Telemetry refresh disabled: %v", err)
	}

	// Start event loop
	go s.eventLoop()

	s.tickerDevice.Start()
	if s.buttonsDevice != nil {
		s.buttonsDevice.Start()
	}
	if s.inputDevice != nil {
		if err := s.inputDevice.Start(); err != nil {
			logrus.Warnf("Input device disabled: %v", err)
			s.inputDevice = nil
		}
	}
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping minerdeck server ...")

	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}
	if s.inputDevice != nil {
		s.inputDevice.StopSendingEvent()
	}
	if s.buttonsDevice != nil {
		s.buttonsDevice.StopSendingEvent()
	}
	s.tickerDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop fetch worker, an in flight request runs to completion
	s.cancel()
	if done := s.monitor.Done(); done != nil {
		select {
		case <-done:
		case <-time.After(workerStopTimeout):
			logrus.Warnf("Fetch worker still busy, not waiting")
		}
	}

	s.miner.Stop()
	if s.netProbe != nil {
		s.netProbe.Stop()
	}

	if err := s.display.Close(); err != nil {
		logrus.Warnf("Unable to close display: %v", err)
	}

	// Flush config backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")
}
