package config

const (
	defaultDataDir             = "~/.local/share/spotgrid"
	defaultLogDir              = "~/.local/share/spotgrid/logs"
	defaultDatabaseFile        = "spotgrid.db"
	defaultBusyTimeoutMS       = 5000
	defaultWorkers             = 4
	defaultMaxSpannedBlocks    = 3
	defaultBatchLimit          = 500
	defaultAssignmentMethod    = "auto_computed"
	defaultPrimeTimeName       = "Prime-Time Cross-Audience"
	defaultRoadblocksSource    = RoadblocksStore
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultLogMaxSizeMB        = 50
	defaultLogMaxBackups       = 5
	defaultMetricsTextfileName = "spotgrid.prom"
	defaultTracingServiceName  = "spotgrid"
	defaultTracingFileName     = "traces.jsonl"
)

// Roadblock oracle sources.
const (
	RoadblocksStore = "store"
	RoadblocksFile  = "file"
	RoadblocksNone  = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Database: Database{
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Assignment: Assignment{
			Workers:          defaultWorkers,
			MaxSpannedBlocks: defaultMaxSpannedBlocks,
			BatchLimit:       defaultBatchLimit,
			Method:           defaultAssignmentMethod,
		},
		Categories: Categories{
			DirectResponseAgencies:     []string{"WorldLink"},
			OvernightShoppingCustomers: []string{"NKB"},
			ExcludedRevenueTypes:       []string{"Trade"},
			PrimeTimeName:              defaultPrimeTimeName,
			PrimeTime: []PrimeTimeWindow{
				{
					Name:  "weekday prime",
					Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
					Start: "19:00",
					End:   "23:59",
				},
				{
					Name:  "weekend prime",
					Days:  []string{"saturday", "sunday"},
					Start: "20:00",
					End:   "23:59",
				},
			},
		},
		Roadblocks: Roadblocks{
			Source: defaultRoadblocksSource,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
		},
		Tracing: Tracing{
			ServiceName: defaultTracingServiceName,
		},
	}
}
