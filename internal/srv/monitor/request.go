package monitor

import "fmt"

type RequestKind int

const (
	GLOBAL_HASHRATE_REQUEST RequestKind = iota
	FEES_REQUEST
	BLOCK_HEIGHT_REQUEST
	BTC_PRICE_REQUEST
	POOL_DATA_REQUEST
)

func (k RequestKind) String() string {
	switch k {
	case GLOBAL_HASHRATE_REQUEST:
		return "global hashrate"
	case FEES_REQUEST:
		return "fees"
	case BLOCK_HEIGHT_REQUEST:
		return "block height"
	case BTC_PRICE_REQUEST:
		return "btc price"
	case POOL_DATA_REQUEST:
		return "pool data"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const MaxURLLength = 256

// Request crosses from the render loop to the fetch worker by value.
// It holds no pointers: the url lives in a fixed buffer.
type Request struct {
	Kind       RequestKind
	EnqueuedAt uint32
	urlLen     uint16
	url        [MaxURLLength]byte
}

func NewRequest(kind RequestKind, url string, now uint32) (Request, error) {
	req := Request{Kind: kind, EnqueuedAt: now}
	if len(url) > MaxURLLength {
		return req, fmt.Errorf("%w: %s url is %d bytes, limit %d", ErrURLTooLong, kind, len(url), MaxURLLength)
	}
	req.urlLen = uint16(copy(req.url[:], url))
	return req, nil
}

func (r Request) URL() string {
	return string(r.url[:r.urlLen])
}
