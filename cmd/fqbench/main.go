// fqbench benchmarks external FASTQ compressors and reports compression
// ratio, speed and memory across thread counts.
package main

func main() {
	Execute()
}
