package bpfobjs

import "github.com/cilium/ebpf"

// LoadTaskSamplerSpec returns the task_sampler CollectionSpec without
// loading it, so a caller can rewrite the `const volatile` parameters
// (daemon_port_threshold, show_all, ...) via spec.Variables before the
// program is loaded into the kernel.
func LoadTaskSamplerSpec() (*ebpf.CollectionSpec, error) {
	return loadTaskSampler()
}

// LoadTaskSamplerObjects loads the task_sampler program and its maps into
// the kernel and stores them in obj (typically *TaskSamplerObjects).
func LoadTaskSamplerObjects(obj interface{}, opts *ebpf.CollectionOptions) error {
	return loadTaskSamplerObjects(obj, opts)
}

// LoadScTrackerObjects loads the sc_tracker program and its maps into the
// kernel and stores them in obj (typically *ScTrackerObjects).
func LoadScTrackerObjects(obj interface{}, opts *ebpf.CollectionOptions) error {
	return loadScTrackerObjects(obj, opts)
}

// LoadIorqTrackerObjects loads the iorq_tracker program and its maps into
// the kernel and stores them in obj (typically *IorqTrackerObjects).
func LoadIorqTrackerObjects(obj interface{}, opts *ebpf.CollectionOptions) error {
	return loadIorqTrackerObjects(obj, opts)
}
