package scheduler

import (
	"github.com/shirou/gopsutil/v3/disk"
)

// SystemConditions is the host-side condition checker. Network metering and
// battery level are phone concerns with no host equivalent, so both report
// permissive answers; free space is read from the models volume.
type SystemConditions struct {
	path string
}

// NewSystemConditions creates a checker reading free space at the given path.
func NewSystemConditions(path string) *SystemConditions {
	return &SystemConditions{path: path}
}

func (c *SystemConditions) NetworkUnmetered() bool { return true }

func (c *SystemConditions) BatteryNotLow() bool { return true }

// FreeBytes returns the free bytes on the volume holding the models root.
// Errors report zero free space, which defers gated jobs rather than letting
// them fill the disk.
func (c *SystemConditions) FreeBytes() int64 {
	usage, err := disk.Usage(c.path)
	if err != nil {
		return 0
	}
	return int64(usage.Free)
}
