package monitor

// MiningCounters is a plain snapshot of the mining engine statistics
type MiningCounters struct {
	Templates    uint32
	Hashes       uint32
	MHashes      uint32
	TotalKHashes uint32
	Shares       uint32
	Valids       uint32
	BestDiff     float64
	UpTime       uint64 // seconds
}

type MiningSource interface {
	Counters() MiningCounters
}

type Connectivity interface {
	Connected() bool
}
