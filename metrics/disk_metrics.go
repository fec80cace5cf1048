// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DiskUsageCollector reports the size of a database directory. The
// directory is walked on every collection, so keep it to directories of
// moderate file counts.
type DiskUsageCollector struct {
	dir string

	bytesDesc *prometheus.Desc
	filesDesc *prometheus.Desc
}

// NewDiskUsageCollector creates a collector for dir, labeled with name.
func NewDiskUsageCollector(name, dir string) *DiskUsageCollector {
	labels := prometheus.Labels{"db": name}
	return &DiskUsageCollector{
		dir: dir,
		bytesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "disk", "usage_bytes"),
			"Total size of the regular files under the database directory.",
			nil, labels,
		),
		filesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "disk", "files"),
			"Number of regular files under the database directory.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *DiskUsageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytesDesc
	ch <- c.filesDesc
}

// Collect implements prometheus.Collector. Nothing is sent when the
// directory cannot be walked.
func (c *DiskUsageCollector) Collect(ch chan<- prometheus.Metric) {
	size, files, err := c.usage()
	if err != nil {
		logger.Debug("unable to measure disk usage", "dir", c.dir, "err", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.bytesDesc, prometheus.GaugeValue, float64(size))
	ch <- prometheus.MustNewConstMetric(c.filesDesc, prometheus.GaugeValue, float64(files))
}

func (c *DiskUsageCollector) usage() (size int64, files int, err error) {
	err = filepath.WalkDir(c.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		files++
		return nil
	})
	return
}

var diskCollectors sync.Map

// RegisterDiskUsage registers a DiskUsageCollector for dir once. It does
// nothing while metrics are disabled.
func RegisterDiskUsage(name, dir string) {
	if NoOp() {
		return
	}
	if _, loaded := diskCollectors.LoadOrStore(name, dir); loaded {
		return
	}
	if err := prometheus.Register(NewDiskUsageCollector(name, dir)); err != nil {
		logger.Warn("unable to register disk usage collector", "db", name, "err", err)
	}
}
