package srv

import (
	"time"

	"github.com/hako/durafmt"
	"github.com/jypelle/minerdeck/apimodel"
	"github.com/jypelle/minerdeck/internal/version"
)

// Status is safe to call from the api goroutines
func (s *ServerApp) Status() apimodel.Status {
	snapshot := s.monitor.Cache().Snapshot()
	counters := s.miner.Counters()

	return apimodel.Status{
		Version:   version.AppVersion.String(),
		Uptime:    durafmt.Parse(time.Since(s.startTime)).LimitFirstN(2).String(),
		Connected: s.monitor.Connected(),
		TimeSync:  s.timeKeeper.Synced(),
		Display: apimodel.DisplayStatus{
			Driver:             s.display.DriverName(),
			CurrentScreen:      s.display.CurrentScreen(),
			ScreenCount:        s.display.ScreenCount(),
			PanelOn:            s.display.PanelOn(),
			ScreensaverActive:  s.display.ScreensaverActive(),
			ScreensaverMinutes: s.display.TimeoutMinutes(),
		},
		Network: apimodel.NetworkStatus{
			BlockHeight:    snapshot.CurrentBlock,
			BtcPriceUsd:    snapshot.BitcoinPrice,
			GlobalHashrate: snapshot.Global.GlobalHash,
			Difficulty:     snapshot.Global.Difficulty,
			FastestFee:     snapshot.Global.FastestFee,
			HalfHourFee:    snapshot.Global.HalfHourFee,
			HourFee:        snapshot.Global.HourFee,
			EconomyFee:     snapshot.Global.EconomyFee,
			MinimumFee:     snapshot.Global.MinimumFee,
		},
		Pool: apimodel.PoolStatus{
			WorkersCount:   snapshot.Pool.WorkersCount,
			WorkersHash:    snapshot.Pool.WorkersHash,
			BestDifficulty: snapshot.Pool.BestDifficulty,
		},
		Miner: apimodel.MinerCounters{
			Templates:    counters.Templates,
			Hashes:       counters.Hashes,
			MHashes:      counters.MHashes,
			TotalKHashes: counters.TotalKHashes,
			Shares:       counters.Shares,
			Valids:       counters.Valids,
			BestDiff:     counters.BestDiff,
			UpTime:       counters.UpTime,
		},
		QueueLength: s.monitor.Dispatcher().Len(),
	}
}
