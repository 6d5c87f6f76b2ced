// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides a buffered slog handler for
// asserting on log output and patient tracker fixtures:
//
//	logger, logs := testutil.NewTestLogger(t)
//	summary, err := aggregator.Aggregate(ctx, testutil.MarchTracker(), period)
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "skipping row")
package shared
