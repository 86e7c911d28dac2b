package api

import "github.com/skadidb/skadi/pkg/archive"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	ArchiveDir   string // Directory containing the served archives
	CacheDir     string // Directory of the decoded-field cache
	CacheEnabled bool
}

// RecordSummary is the JSON shape of one directory entry.
type RecordSummary struct {
	Handle   int    `json:"handle"`
	Name     string `json:"nomvar"`
	TypVar   string `json:"typvar"`
	Etiket   string `json:"etiket"`
	DateO    int32  `json:"dateo"`
	Deet     int32  `json:"deet"`
	Npas     int32  `json:"npas"`
	NI       int32  `json:"ni"`
	NJ       int32  `json:"nj"`
	NK       int32  `json:"nk"`
	IP1      int32  `json:"ip1"`
	IP2      int32  `json:"ip2"`
	IP3      int32  `json:"ip3"`
	GridType string `json:"grtyp"`
	IG1      int32  `json:"ig1"`
	IG2      int32  `json:"ig2"`
	IG3      int32  `json:"ig3"`
	IG4      int32  `json:"ig4"`
	NBits    uint8  `json:"nbits"`
	DataType uint8  `json:"datyp"`
}

// DataResponse carries a decoded field along with its metadata.
type DataResponse struct {
	Record RecordSummary `json:"record"`
	Values []float32     `json:"values"`
}

func summarize(h archive.Handle, meta archive.RecordMetadata) RecordSummary {
	return RecordSummary{
		Handle:   int(h),
		Name:     meta.Name,
		TypVar:   meta.TypVar,
		Etiket:   meta.Etiket,
		DateO:    meta.DateO,
		Deet:     meta.Deet,
		Npas:     meta.Npas,
		NI:       meta.NI,
		NJ:       meta.NJ,
		NK:       meta.NK,
		IP1:      meta.IP1,
		IP2:      meta.IP2,
		IP3:      meta.IP3,
		GridType: meta.GridType,
		IG1:      meta.IG1,
		IG2:      meta.IG2,
		IG3:      meta.IG3,
		IG4:      meta.IG4,
		NBits:    meta.NBits,
		DataType: uint8(meta.DataType),
	}
}
