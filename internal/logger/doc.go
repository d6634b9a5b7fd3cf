// Package logger provides the shared, lock-guarded output sink.
//
// Every worker writes its progress lines through a single Logger. Each
// message is formatted and written under one mutex acquisition, so lines
// from concurrent workers never interleave. The logger supports four levels:
// Debug, Info, Warn, and Error. Each entry carries an optional timestamp,
// the level, an optional tag (usually the worker label), and the message.
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Batch generated")
//	logger.Info("worker-1", "processing transaction %d", id)
//	logger.Error("", "Failed: %v", err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Debug("worker-2", "Debug message")
//
// Logger also implements io.Writer, so reports can be written through the
// same lock:
//
//	fmt.Fprintln(l, result.Report())
//
// # Log Levels
//
// Messages below the configured level are filtered:
//   - LevelDebug: all messages
//   - LevelInfo: Info, Warn, Error
//   - LevelWarn: Warn, Error
//   - LevelError: Error only
package logger
