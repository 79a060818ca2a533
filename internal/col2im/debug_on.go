//go:build col2imdebug

package col2im

const debugChecks = true
