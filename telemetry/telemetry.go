// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry exports arena statistics to Prometheus.
package telemetry

import (
	"net/http"

	"github.com/nw4j/nativestack/stack"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nativestack"

// Source is anything that can list arena statistics, typically a
// *stack.Group.
type Source interface {
	Snapshot() []stack.NamedStats
}

// Collector reports the Stats of every arena of a Source on each scrape.
type Collector struct {
	src Source

	capacity  *prometheus.Desc
	inUse     *prometheus.Desc
	highWater *prometheus.Desc
	depth     *prometheus.Desc
	pushes    *prometheus.Desc
	pops      *prometheus.Desc
	overflows *prometheus.Desc
	reallocs  *prometheus.Desc
}

func NewCollector(src Source) *Collector {
	labels := []string{"arena"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "arena", name), help, labels, nil)
	}
	return &Collector{
		src:       src,
		capacity:  desc("capacity_bytes", "Size of the arena region."),
		inUse:     desc("in_use_bytes", "Bytes currently allocated from the arena."),
		highWater: desc("high_water_bytes", "Largest number of bytes allocated at once."),
		depth:     desc("depth", "Number of live allocations."),
		pushes:    desc("pushes_total", "Allocations served."),
		pops:      desc("pops_total", "Allocations released."),
		overflows: desc("overflows_total", "Allocations rejected for lack of capacity."),
		reallocs:  desc("reallocations_total", "Successful resizes of the arena region."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.inUse
	ch <- c.highWater
	ch <- c.depth
	ch <- c.pushes
	ch <- c.pops
	ch <- c.overflows
	ch <- c.reallocs
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.src.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(st.Capacity), st.Name)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(st.InUse), st.Name)
		ch <- prometheus.MustNewConstMetric(c.highWater, prometheus.GaugeValue, float64(st.HighWater), st.Name)
		ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(st.Depth), st.Name)
		ch <- prometheus.MustNewConstMetric(c.pushes, prometheus.CounterValue, float64(st.Pushes), st.Name)
		ch <- prometheus.MustNewConstMetric(c.pops, prometheus.CounterValue, float64(st.Pops), st.Name)
		ch <- prometheus.MustNewConstMetric(c.overflows, prometheus.CounterValue, float64(st.Overflows), st.Name)
		ch <- prometheus.MustNewConstMetric(c.reallocs, prometheus.CounterValue, float64(st.Reallocations), st.Name)
	}
}

var _ prometheus.Collector = (*Collector)(nil)

// NewRegistry returns a registry holding a Collector for src along with the
// standard Go runtime and process collectors.
func NewRegistry(src Source) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(src))
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
