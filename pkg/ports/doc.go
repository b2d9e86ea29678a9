/*
Package ports defines the driven ports (interfaces) for the cohort engine.

These interfaces decouple the simulation core from external implementations, so the
engine works with any formula language, result backend or trace consumer.

# Key Interfaces

  - Evaluator / Formula: Compiles and evaluates formulas against a variable environment.
  - ResultStore: Persists run results (memory, Redis, SQLite).
  - TraceSink: Consumes per-cycle records as they are committed.
  - ErrorLog: Receives structured run failures for operator-facing logs.
  - DistributedLocker: Guards run IDs across multiple instances.
*/
package ports
