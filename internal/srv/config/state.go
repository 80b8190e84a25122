package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultSaveDelay = 10 * time.Second

type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	saveDelay             time.Duration
	completeStateFilename string
}

type ServerStateConfig struct {
	ScreensaverMinutes uint32 `yaml:"screensaver_minutes"`
	LastScreen         int    `yaml:"last_screen"`
}

func NewServerState(completeStateFilename string, defaultScreensaverMinutes uint32) (*ServerState, error) {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
		saveDelay:             defaultSaveDelay,
	}

	rawConfig, err := os.ReadFile(completeStateFilename)
	if err == nil {
		if err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig); err != nil {
			return nil, fmt.Errorf("unable to interpret state file: %w", err)
		}
	} else {
		logrus.Infof("Create default state file")
		serverState.SetScreensaverMinutes(defaultScreensaverMinutes)
	}

	return serverState, nil
}

func (ss *ServerState) ScreensaverMinutes() uint32 {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return ss.serverStateConfig.ScreensaverMinutes
}

func (ss *ServerState) SetScreensaverMinutes(minutes uint32) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.ScreensaverMinutes = minutes
	ss.scheduleSave()
}

func (ss *ServerState) LastScreen() int {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return ss.serverStateConfig.LastScreen
}

func (ss *ServerState) SetLastScreen(index int) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.LastScreen == index {
		return
	}
	ss.serverStateConfig.LastScreen = index
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(ss.saveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(ss.saveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Errorf("Unable to serialize state file: %v", err)
		return
	}
	if err = os.WriteFile(ss.completeStateFilename, rawConfig, 0660); err != nil {
		logrus.Errorf("Unable to save state file: %v", err)
	}
}

func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}
