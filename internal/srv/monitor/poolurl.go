package monitor

import (
	"strconv"
	"strings"
)

const PublicPoolAPIURL = "https://public-pool.io:40557/api/client/"

// PoolAPIURL resolves the statistics endpoint of a known pool from its stratum host and port
func PoolAPIURL(address string, port int) string {
	address = strings.TrimSpace(address)
	switch address {
	case "public-pool.io":
		return "https://public-pool.io:40557/api/client/"
	case "pool.nerdminers.org":
		return "https://pool.nerdminers.org/users/"
	}

	switch port {
	case 3333:
		switch address {
		case "pool.sethforprivacy.com":
			return "https://pool.sethforprivacy.com/api/client/"
		case "pool.solomining.de":
			return "https://pool.solomining.de/api/client/"
		}
	case 2018:
		// local public-pool instance (Umbrel, Start9)
		return "http://" + address + ":" + strconv.Itoa(2019) + "/api/client/"
	}
	return PublicPoolAPIURL
}
