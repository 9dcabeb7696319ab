/*
Package workers provides utilities for determining worker pool sizes in
containerized environments.

When running in a container, GOMAXPROCS reflects the cgroup CPU limit
(Go 1.19+) while runtime.NumCPU() still reports the host's cores.
Sizing pools from NumCPU on a large node can spawn far more workers than
the container can actually run, causing throttling and context-switch
overhead. The helpers here size from GOMAXPROCS instead.

Batch reprocessing is the main consumer: transcoding is CPU-heavy
inside ffmpeg but the Go side mostly waits on the child process, so the
mixed multiplier fits.

	count := workers.ForMixed(8)

All functions respect the PIPELINE_WORKERS environment variable as a
manual override, capped by the limit argument when one is given.
*/
package workers
