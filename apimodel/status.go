package apimodel

type Status struct {
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Connected bool   `json:"connected"`
	TimeSync  bool   `json:"time_synced"`

	Display DisplayStatus `json:"display"`
	Network NetworkStatus `json:"network"`
	Pool    PoolStatus    `json:"pool"`
	Miner   MinerCounters `json:"miner"`

	QueueLength int `json:"queue_length"`
}

type DisplayStatus struct {
	Driver             string `json:"driver"`
	CurrentScreen      int    `json:"current_screen"`
	ScreenCount        int    `json:"screen_count"`
	PanelOn            bool   `json:"panel_on"`
	ScreensaverActive  bool   `json:"screensaver_active"`
	ScreensaverMinutes uint32 `json:"screensaver_minutes"`
}

type NetworkStatus struct {
	BlockHeight    string `json:"block_height"`
	BtcPriceUsd    uint32 `json:"btc_price_usd"`
	GlobalHashrate string `json:"global_hashrate"`
	Difficulty     string `json:"difficulty"`
	FastestFee     int    `json:"fastest_fee"`
	HalfHourFee    int    `json:"half_hour_fee"`
	HourFee        int    `json:"hour_fee"`
	EconomyFee     int    `json:"economy_fee"`
	MinimumFee     int    `json:"minimum_fee"`
}

type PoolStatus struct {
	WorkersCount   int    `json:"workers_count"`
	WorkersHash    string `json:"workers_hash"`
	BestDifficulty string `json:"best_difficulty"`
}

// MinerCounters is pushed by an external mining engine and reported in the status
type MinerCounters struct {
	Templates    uint32  `json:"templates"`
	Hashes       uint32  `json:"hashes"`
	MHashes      uint32  `json:"mhashes"`
	TotalKHashes uint32  `json:"total_khashes"`
	Shares       uint32  `json:"shares"`
	Valids       uint32  `json:"valids"`
	BestDiff     float64 `json:"best_diff"`
	UpTime       uint64  `json:"uptime_seconds"`
}
