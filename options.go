// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

// Option configures a Simulation during creation.
//
// Example:
//
//	sim, err := lenia.New(adapter, lenia.DefaultSettings(),
//	    lenia.WithKernel(lenia.DefaultKernel()))
type Option func(*options)

type options struct {
	kernel       *KernelSource
	registryOpts []RegistryOption
}

// WithKernel sets the kernel source, overriding Settings.KernelPath.
func WithKernel(src KernelSource) Option {
	return func(o *options) {
		o.kernel = &src
	}
}

// WithRegistryOptions passes options to the pipeline registry, for example
// a custom compiler or executor.
func WithRegistryOptions(opts ...RegistryOption) Option {
	return func(o *options) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}
