/*
Package loader reads cohort model documents.

Models are written in YAML (or JSON, selected by file extension):

	name: healthy-dead
	dimensions: [LY]
	settings:
	  cohort_size: 1000
	  max_cycles: 50
	  discount: {rates: [3], start_cycle: 0}
	parameters:
	  - {name: pDie, value: 0.1, dist: {type: normal, mu: 0.1, sigma: 0.02}}
	chain:
	  name: Markov
	  termination: t >= 50
	  states:
	    - name: Healthy
	      prob: 1
	      reward: 1
	      children:
	        - {name: die, to: Dead, prob: pDie}
	        - {name: stay, to: Healthy, prob: C}
	    - name: Dead
	      prob: 0
	      reward: 0
	      children:
	        - {name: remain, to: Dead, prob: 1}

Numbers are accepted wherever a formula is expected, and a single value wherever
a per-dimension list is expected. Update rules are written as "variable = formula".
*/
package loader
