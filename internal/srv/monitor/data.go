package monitor

type MiningData struct {
	CompletedShares uint32
	TotalMHashes    uint32
	TotalKHashes    uint32
	CurrentHashRate string
	Templates       uint32
	BestDiff        string
	TimeMining      string
	Valids          uint32
	Temp            string
	CurrentTime     string
}

type ClockData struct {
	CompletedShares uint32
	TotalKHashes    uint32
	CurrentHashRate string
	BtcPrice        string
	BlockHeight     string
	CurrentTime     string
	CurrentDate     string
}

type ClockDataT struct {
	Valids          uint32
	CurrentHashRate string
	CurrentHours    int
	CurrentMinutes  int
	CurrentSeconds  int
}

type CoinData struct {
	CompletedShares   uint32
	TotalKHashes      uint32
	CurrentHashRate   string
	BtcPrice          string
	CurrentTime       string
	HalfHourFee       string
	FastestFee        string
	HourFee           string
	EconomyFee        string
	MinimumFee        string
	NetworkDifficulty string
	GlobalHashRate    string
	BlockHeight       string
	ProgressPercent   uint64
	RemainingBlocks   string
}
