// Package graph builds the module dependency graph of a resolved bundle and
// orders modules by PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/unbrowserify/internal/model"
)

// Build creates one dependency edge per (source name, target name) pair from
// the require maps of named records. Specifiers are kept in first-seen order.
// Records that share a name share their edges; self-edges are dropped.
func Build(b *model.Bundle, names *model.NameTable) []model.Dependency {
	type edgeKey struct{ src, tgt string }
	edgeSpecifiers := make(map[edgeKey][]string)

	for _, rec := range b.Records {
		src, ok := names.Lookup(rec.ID)
		if !ok {
			continue
		}
		for _, req := range rec.Requires {
			tgt, ok := names.Lookup(req.Target)
			if !ok || tgt == src {
				continue
			}
			key := edgeKey{src, tgt}
			if !contains(edgeSpecifiers[key], req.Specifier) {
				edgeSpecifiers[key] = append(edgeSpecifiers[key], req.Specifier)
			}
		}
	}

	deps := make([]model.Dependency, 0, len(edgeSpecifiers))
	for key, specs := range edgeSpecifiers {
		deps = append(deps, model.Dependency{
			Source:     key.src,
			Target:     key.tgt,
			Specifiers: specs,
		})
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// Modules lists every named id with its kind, in name order.
func Modules(names *model.NameTable, kind func(model.ModuleID) model.ModuleKind) []model.ModuleInfo {
	ids := names.IDs()
	mods := make([]model.ModuleInfo, 0, len(ids))
	for _, id := range ids {
		name, _ := names.Lookup(id)
		mods = append(mods, model.ModuleInfo{ID: id, Name: name, Kind: kind(id)})
	}
	sort.SliceStable(mods, func(i, j int) bool {
		return mods[i].Name < mods[j].Name
	})
	return mods
}

// Rank applies PageRank over module names and sorts mods by rank
// descending, then by name. Modules sharing a name share a rank.
func Rank(mods []model.ModuleInfo, deps []model.Dependency) {
	if len(mods) == 0 {
		return
	}

	nodes := make(map[string]struct{})
	for i := range mods {
		nodes[mods[i].Name] = struct{}{}
	}

	if len(deps) == 0 {
		uniform := 1.0 / float64(len(nodes))
		for i := range mods {
			mods[i].Rank = uniform
		}
		sortByRank(mods)
		return
	}

	// An edge from source to target means source requires target; every
	// distinct specifier counts once.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for _, d := range deps {
		if _, ok := nodes[d.Source]; !ok {
			continue
		}
		if _, ok := nodes[d.Target]; !ok {
			continue
		}
		for range d.Specifiers {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
	for i := range mods {
		mods[i].Rank = ranks[mods[i].Name]
	}
	sortByRank(mods)
}

func sortByRank(mods []model.ModuleInfo) {
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Rank != mods[j].Rank {
			return mods[i].Rank > mods[j].Rank
		}
		if mods[i].Name != mods[j].Name {
			return mods[i].Name < mods[j].Name
		}
		return mods[i].ID < mods[j].ID
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	rank := make(map[string]float64, n)
	for node := range nodes {
		rank[node] = 1.0 / float64(n)
	}
	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		// Modules that require nothing spread their rank evenly.
		var dangling float64
		for node := range nodes {
			if outDegree[node] == 0 {
				dangling += rank[node]
			}
		}
		base := teleport + alpha*dangling/float64(n)

		next := make(map[string]float64, n)
		for node := range nodes {
			next[node] = base
		}
		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				next[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(next[node] - rank[node])
		}
		rank = next
		if diff < tol {
			break
		}
	}
	return rank
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
