package display

import (
	"fmt"

	"github.com/jypelle/minerdeck/internal/srv/monitor"
)

// Page is the text content of one screen, shared by every panel driver
type Page struct {
	Title    string
	Lines    []string
	Progress int // percent, negative hides the bar
}

func (p Page) String() string {
	s := p.Title
	for _, line := range p.Lines {
		s += " | " + line
	}
	if p.Progress >= 0 {
		s += fmt.Sprintf(" | %d%%", p.Progress)
	}
	return s
}

func MiningPage(d monitor.MiningData) Page {
	return Page{
		Title: "MINING " + d.CurrentTime,
		Lines: []string{
			d.CurrentHashRate + " KH/s",
			fmt.Sprintf("Sh %d Val %d Tpl %d", d.CompletedShares, d.Valids, d.Templates),
			fmt.Sprintf("Best %s  %sC", d.BestDiff, d.Temp),
			"Up " + d.TimeMining,
		},
		Progress: -1,
	}
}

func ClockPage(d monitor.ClockData) Page {
	return Page{
		Title: d.CurrentTime + "  " + d.CurrentDate,
		Lines: []string{
			"BTC " + d.BtcPrice,
			"Block " + d.BlockHeight,
			d.CurrentHashRate + " KH/s",
			fmt.Sprintf("Shares %d", d.CompletedShares),
		},
		Progress: -1,
	}
}

func GlobalStatsPage(d monitor.CoinData) Page {
	return Page{
		Title: "NETWORK " + d.CurrentTime,
		Lines: []string{
			"Hash " + d.GlobalHashRate + " EH/s",
			"Diff " + d.NetworkDifficulty,
			"Fee " + d.HalfHourFee,
			fmt.Sprintf("F%s H%s E%s M%s", d.FastestFee, d.HourFee, d.EconomyFee, d.MinimumFee),
		},
		Progress: -1,
	}
}

func BlocksPage(d monitor.CoinData) Page {
	return Page{
		Title: "HALVING",
		Lines: []string{
			"Block " + d.BlockHeight,
			d.RemainingBlocks,
			fmt.Sprintf("%d%% of epoch", d.ProgressPercent),
		},
		Progress: int(d.ProgressPercent),
	}
}

func PoolPage(p monitor.PoolData, t monitor.ClockDataT) Page {
	return Page{
		Title: fmt.Sprintf("POOL %02d:%02d:%02d", t.CurrentHours, t.CurrentMinutes, t.CurrentSeconds),
		Lines: []string{
			fmt.Sprintf("Workers %d", p.WorkersCount),
			"Hash " + p.WorkersHash,
			"Best " + p.BestDifficulty,
			t.CurrentHashRate + " KH/s",
		},
		Progress: -1,
	}
}

// pageScreens binds the page layouts to a data source, in cycling order
func pageScreens(data DataSource, show func(Page)) []Screen {
	return []Screen{
		func(elapsedMs uint32) { show(MiningPage(data.MiningData(elapsedMs))) },
		func(elapsedMs uint32) { show(ClockPage(data.ClockData(elapsedMs))) },
		func(elapsedMs uint32) { show(GlobalStatsPage(data.CoinData(elapsedMs))) },
		func(elapsedMs uint32) { show(BlocksPage(data.CoinData(elapsedMs))) },
		func(elapsedMs uint32) { show(PoolPage(data.PoolData(), data.ClockDataT(elapsedMs))) },
	}
}
