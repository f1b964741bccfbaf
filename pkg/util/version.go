package util

import "runtime"

// 编译时通过 -ldflags "-X post-dedup/pkg/util.version=..." 注入
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

type Version struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

func GetVersion() Version {
	return Version{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	}
}
