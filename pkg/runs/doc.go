/*
Package runs implements run bookkeeping around a result store.

It guards run IDs against concurrent simulation, within one process through
reference-counted local locks and across replicas through an optional
distributed locker, and persists results once a run completes.
*/
package runs
