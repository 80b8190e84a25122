package display

import "github.com/sirupsen/logrus"

// NoneDriver runs headless: pages are only written to the debug log
type NoneDriver struct {
	screens []Screen
}

func NewNoneDriver(data DataSource) *NoneDriver {
	d := &NoneDriver{}
	d.screens = pageScreens(data, func(page Page) {
		logrus.Debugf("Screen: %s", page)
	})
	return d
}

func (d *NoneDriver) Name() string {
	return NONE_DRIVER
}

func (d *NoneDriver) Init() error {
	return nil
}

func (d *NoneDriver) LoadingScreen() {
	logrus.Infof("Loading...")
}

func (d *NoneDriver) SetupScreen() {
	logrus.Infof("Waiting for configuration")
}

func (d *NoneDriver) AlternateScreenState()    {}
func (d *NoneDriver) AlternateScreenRotation() {}

func (d *NoneDriver) Screens() []Screen {
	return d.screens
}

func (d *NoneDriver) AnimateCurrentScreen(frame uint64) {}
func (d *NoneDriver) DoLedEffects(frame uint64)         {}
