// Package subgenome infers the subgenome composition of polyploid taxa by
// combinatorial search over allele partitions and by aligning cluster
// labels across replicate reconstructions.
//
// The module is organized around a generic local search engine and two
// problem instantiations:
//
//   - search: a tabu-search driver with deterministic seeded sampling,
//     fitness memoization, bounded parallel evaluation, and an optional
//     random-restart hillclimbing mode. The engine is generic over the
//     state type and is wired to a problem through the Generator and
//     Oracle interfaces.
//
//   - partition: the allele-to-subgenome assignment problem. States bin
//     the alleles of each accession and marker into hypothetical ancestral
//     subgenomes; moves swap two alleles between bins; fitness is the
//     extra-lineage count of a species tree inferred under the implied
//     allele mapping.
//
//   - alignment: the label-switching problem across replicate runs. States
//     hold one column permutation per run; moves transpose two labels in
//     one run; fitness is the Shannon entropy of the summed membership
//     rows. Small instances can be solved exactly.
//
//   - reconcile: the bridge to the external Java reconciliation tool. It
//     writes NEXUS jobs, runs the jar, and parses species trees and
//     extra-lineage counts out of the output.
//
// Supporting packages carry the ambient concerns: cache (memoized fitness
// stores, in memory or SQLite), config (YAML configuration), errors
// (coded, wrappable errors), and logging (leveled structured logging with
// run and iteration context).
package subgenome
