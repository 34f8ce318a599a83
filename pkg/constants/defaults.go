// Package constants defines cross-cutting defaults for block size, hash
// group fan-out, protocol version, and wire framing.
package constants

import "time"

// Data Configuration
const (
	// DefaultBlockSize is the chunk size used by the manifest builder when
	// the caller does not specify one.
	DefaultBlockSize = 4096

	// HashGroupFanout is the maximum number of pointers (N) a single hash
	// group may hold before it is rotated into a wrapped child manifest.
	HashGroupFanout = 44
)

// Protocol Configuration
const (
	// ProtocolVersion is carried in every wire.Frame.
	ProtocolVersion = 1

	// DefaultQUICPort is the default port for the QUIC portal transport.
	DefaultQUICPort = 9696

	// HashAlgorithm names the content digest algorithm used to address
	// repository objects.
	HashAlgorithm = "sha256"

	// ALPN is the TLS ALPN protocol string negotiated by both concrete
	// transports.
	ALPN = "ccnxfilerepo/1"
)

// Timing Configuration
const (
	// DefaultRequestTimeout is a default bound for a single outstanding
	// Send/Receive pair. No package in this module applies it: a request
	// whose context has no deadline waits until the transport fails.
	DefaultRequestTimeout = 30 * time.Second

	// MaxClockSkew is a clock-skew tolerance. wire.Frame carries no
	// timestamp, and nothing in this module checks a frame against it.
	MaxClockSkew = 120 * time.Second
)

// Frame kinds (§6 request/response contract)
const (
	KindFetch    = 1 // request: Locator + optional DigestRestriction
	KindManifest = 2 // response: Manifest
	KindObject   = 3 // response: ContentObject
	KindError    = 0 // response: wire.Error
)

// Error Codes (wire.Error.Code)
const (
	ErrorNotFound        = 1
	ErrorVersionMismatch = 2
	ErrorMalformedFrame  = 3
)
