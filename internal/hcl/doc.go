// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for file discovery, parsing session files and translating
// their blocks into the format-agnostic model.
package hcl
