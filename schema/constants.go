package schema

import "strings"

// Custom string types for type safety.
type (
	// CompanyStatus represents the lifecycle category of a company.
	CompanyStatus string

	// PeerGroupKind represents one of the three peer-group families.
	PeerGroupKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All company statuses supported.
const (
	ProducerStatus  CompanyStatus = "producer"
	DeveloperStatus CompanyStatus = "developer"
	ExplorerStatus  CompanyStatus = "explorer"
	RoyaltyStatus   CompanyStatus = "royalty"
	OtherStatus     CompanyStatus = "other" // fallback bucket
)

// All peer-group families.
const (
	StatusPeers      PeerGroupKind = "status"
	ValuationPeers   PeerGroupKind = "valuation"
	OperationalPeers PeerGroupKind = "operational"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Engine thresholds.
const (
	// MinPeerGroupSize is the minimum number of valid peer values needed for a
	// percentile to be reported. It is also the minimum universe size for precompute.
	MinPeerGroupSize = 5

	// MaxValuationPeers is the number of nearest same-status companies kept per valuation group.
	MaxValuationPeers = 10

	// NeutralScore is returned whenever a normalization is statistically unreliable.
	NeutralScore = 50.0

	// OperationalTiers is the number of operational tiers per status bucket.
	OperationalTiers = 3
)

// AllStatuses lists every status in display order.
var AllStatuses = []CompanyStatus{ProducerStatus, DeveloperStatus, ExplorerStatus, RoyaltyStatus, OtherStatus}

// AllPeerGroupKinds lists the peer-group families in blend order.
var AllPeerGroupKinds = []PeerGroupKind{StatusPeers, ValuationPeers, OperationalPeers}

// ValidStatuses lists all recognized statuses.
var ValidStatuses = map[CompanyStatus]struct{}{
	ProducerStatus:  {},
	DeveloperStatus: {},
	ExplorerStatus:  {},
	RoyaltyStatus:   {},
	OtherStatus:     {},
}

// ValidPeerGroupKinds lists all recognized peer-group families.
var ValidPeerGroupKinds = map[PeerGroupKind]struct{}{
	StatusPeers:      {},
	ValuationPeers:   {},
	OperationalPeers: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// NormalizeStatus maps free-form status text onto a known status.
// Unrecognized or empty values land in the other bucket.
func NormalizeStatus(s string) CompanyStatus {
	status := CompanyStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidStatuses[status]; ok {
		return status
	}
	return OtherStatus
}
