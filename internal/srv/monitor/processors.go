package monitor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jypelle/minerdeck/internal/jsonx"
)

// processor turns a fetched payload into a cache write. A decode error leaves the cache untouched.
type processor func(cache *Cache, payload []byte) error

var processors = map[RequestKind]processor{
	GLOBAL_HASHRATE_REQUEST: processGlobalHashrate,
	FEES_REQUEST:            processFees,
	BLOCK_HEIGHT_REQUEST:    processBlockHeight,
	BTC_PRICE_REQUEST:       processBTCPrice,
	POOL_DATA_REQUEST:       processPoolData,
}

// flexFloat accepts both JSON numbers and numeric strings; pool APIs use either.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*f = flexFloat(v)
	return nil
}

type globalHashratePayload struct {
	CurrentHashrate   *float64 `json:"currentHashrate"`
	CurrentDifficulty *float64 `json:"currentDifficulty"`
}

func processGlobalHashrate(cache *Cache, payload []byte) error {
	var doc globalHashratePayload
	if err := jsonx.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("global hashrate: %w", err)
	}
	cache.UpdateGlobal(func(g *GlobalData) {
		if doc.CurrentHashrate != nil {
			if text, ok := formatGlobalHash(*doc.CurrentHashrate); ok {
				g.GlobalHash = text
			}
		}
		if doc.CurrentDifficulty != nil {
			if text, ok := formatDifficulty(*doc.CurrentDifficulty); ok {
				g.Difficulty = text
			}
		}
	})
	return nil
}

type feesPayload struct {
	FastestFee  *int `json:"fastestFee"`
	HalfHourFee *int `json:"halfHourFee"`
	HourFee     *int `json:"hourFee"`
	EconomyFee  *int `json:"economyFee"`
	MinimumFee  *int `json:"minimumFee"`
}

func processFees(cache *Cache, payload []byte) error {
	var doc feesPayload
	if err := jsonx.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("fees: %w", err)
	}
	cache.UpdateGlobal(func(g *GlobalData) {
		setIfPresent(&g.FastestFee, doc.FastestFee)
		setIfPresent(&g.HalfHourFee, doc.HalfHourFee)
		setIfPresent(&g.HourFee, doc.HourFee)
		setIfPresent(&g.EconomyFee, doc.EconomyFee)
		setIfPresent(&g.MinimumFee, doc.MinimumFee)
	})
	return nil
}

func setIfPresent(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func processBlockHeight(cache *Cache, payload []byte) error {
	height := strings.TrimSpace(string(payload))
	if height == "" {
		return fmt.Errorf("block height: %w", ErrEmptyPayload)
	}
	if _, err := strconv.ParseUint(height, 10, 64); err != nil {
		return fmt.Errorf("block height: %w", err)
	}
	cache.SetCurrentBlock(height)
	return nil
}

type btcPricePayload struct {
	Bitcoin *struct {
		USD *float64 `json:"usd"`
	} `json:"bitcoin"`
}

func processBTCPrice(cache *Cache, payload []byte) error {
	var doc btcPricePayload
	if err := jsonx.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("btc price: %w", err)
	}
	if doc.Bitcoin == nil || doc.Bitcoin.USD == nil || *doc.Bitcoin.USD < 0 {
		return nil
	}
	cache.SetBitcoinPrice(uint32(*doc.Bitcoin.USD))
	return nil
}

type poolWorker struct {
	SessionID string    `json:"sessionId"`
	HashRate  flexFloat `json:"hashRate"`
}

type poolPayload struct {
	WorkersCount   *int          `json:"workersCount"`
	Workers        *[]poolWorker `json:"workers"`
	BestDifficulty *flexFloat    `json:"bestDifficulty"`
}

func processPoolData(cache *Cache, payload []byte) error {
	var doc poolPayload
	if err := jsonx.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("pool data: %w", err)
	}

	var workersHash string
	if doc.Workers != nil {
		var total float64
		for _, w := range *doc.Workers {
			total += float64(w.HashRate)
		}
		workersHash = SuffixString(total)
	}

	cache.UpdatePool(func(p *PoolData) {
		setIfPresent(&p.WorkersCount, doc.WorkersCount)
		if doc.Workers != nil {
			p.WorkersHash = workersHash
		}
		if doc.BestDifficulty != nil {
			p.BestDifficulty = SuffixString(float64(*doc.BestDifficulty))
		}
	})
	return nil
}
