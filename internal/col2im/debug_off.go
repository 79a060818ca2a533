//go:build !col2imdebug

package col2im

// debugChecks enables address validation in the kernel loops.
// Build with -tags col2imdebug to turn it on.
const debugChecks = false
