package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// DefaultClusterThreshold is the cluster size at which a contradiction
// cluster counts as systemic regardless of regional concentration.
const DefaultClusterThreshold = 10

// BuildContradictions builds the contradiction graph over a set of
// mismatches and partitions it into clusters.
//
// One node exists per mismatch. Two nodes are connected iff their
// contradiction-type labels are identical; geography never creates edges.
// Clusters are connected components over the facilities behind the nodes,
// so every facility lands in exactly one cluster. A cluster is systemic
// when it spans at least clusterThreshold distinct facilities, or when its
// members make up more than half of all facilities with any mismatch in
// some region.
func BuildContradictions(mismatches []common.Mismatch, clusterThreshold int) common.ContradictionAnalysis {
	if clusterThreshold <= 0 {
		clusterThreshold = DefaultClusterThreshold
	}

	if len(mismatches) == 0 {
		return common.ContradictionAnalysis{
			Nodes:            []common.ContradictionNode{},
			Edges:            []common.ContradictionEdge{},
			Clusters:         []common.ContradictionCluster{},
			SystemicPatterns: []string{},
			Summary:          "No mismatches to analyze",
		}
	}

	nodes := make([]common.ContradictionNode, 0, len(mismatches))
	for _, m := range mismatches {
		nodes = append(nodes, common.ContradictionNode{
			FacilityID: m.FacilityID,
			Type:       contradictionType(m),
			Severity:   m.Severity,
		})
	}

	edges := buildEdges(nodes)
	clusters := findClusters(nodes, edges, mismatches, clusterThreshold)

	patterns := make([]string, 0, len(clusters))
	systemicCount := 0
	for _, cluster := range clusters {
		regions := clusterRegions(cluster.FacilityIDs, mismatches)
		tag := "Isolated"
		if cluster.IsSystemic {
			tag = "SYSTEMIC"
			systemicCount++
		}
		patterns = append(patterns, fmt.Sprintf("%s: %s (%s - %d facilities)",
			strings.Join(regions, ", "), cluster.Pattern, tag, len(cluster.FacilityIDs)))
	}

	summary := fmt.Sprintf("Built contradiction graph: %d nodes, %d edges, %d clusters (%d systemic, %d isolated)",
		len(nodes), len(edges), len(clusters), systemicCount, len(clusters)-systemicCount)

	return common.ContradictionAnalysis{
		Nodes:            nodes,
		Edges:            edges,
		Clusters:         clusters,
		SystemicPatterns: patterns,
		Summary:          summary,
	}
}

// contradictionType labels a mismatch by capability plus the first missing
// critical item. Mismatches without a missing critical item share the
// generic infrastructure-gap label for their capability.
func contradictionType(m common.Mismatch) string {
	if m.Severity == common.SeverityCritical && len(m.MissingInfrastructure) > 0 {
		item := strings.ReplaceAll(m.MissingInfrastructure[0], " ", "_")
		return m.ClaimedCapability + "_without_" + item
	}
	return m.ClaimedCapability + "_infrastructure_gap"
}

func buildEdges(nodes []common.ContradictionNode) []common.ContradictionEdge {
	edges := []common.ContradictionEdge{}
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if a.Type != b.Type {
				continue
			}
			weight := 0.5
			if a.Severity == b.Severity {
				weight += 0.5
			}
			edges = append(edges, common.ContradictionEdge{
				SourceFacility:      a.FacilityID,
				TargetFacility:      b.FacilityID,
				SharedContradiction: a.Type,
				Weight:              weight,
			})
		}
	}
	return edges
}

func findClusters(nodes []common.ContradictionNode, edges []common.ContradictionEdge, mismatches []common.Mismatch, clusterThreshold int) []common.ContradictionCluster {
	adjacency := map[string]map[string]struct{}{}
	addNeighbor := func(from, to string) {
		if adjacency[from] == nil {
			adjacency[from] = map[string]struct{}{}
		}
		adjacency[from][to] = struct{}{}
	}
	for _, edge := range edges {
		addNeighbor(edge.SourceFacility, edge.TargetFacility)
		addNeighbor(edge.TargetFacility, edge.SourceFacility)
	}

	visited := map[string]struct{}{}
	clusters := []common.ContradictionCluster{}

	for _, node := range nodes {
		if _, ok := visited[node.FacilityID]; ok {
			continue
		}

		members := dfsComponent(node.FacilityID, adjacency, visited)
		if len(members) == 0 {
			continue
		}

		clusters = append(clusters, common.ContradictionCluster{
			ID:          fmt.Sprintf("CLUSTER_%d", len(clusters)+1),
			Pattern:     clusterPattern(members, nodes, mismatches),
			FacilityIDs: members,
			IsSystemic:  isSystemicCluster(members, mismatches, clusterThreshold),
		})
	}

	return clusters
}

// dfsComponent walks one connected component starting at a facility.
// Neighbors are visited in sorted order so member order is deterministic.
func dfsComponent(start string, adjacency map[string]map[string]struct{}, visited map[string]struct{}) []string {
	stack := []string{start}
	component := []string{}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		component = append(component, current)

		neighbors := make([]string, 0, len(adjacency[current]))
		for neighbor := range adjacency[current] {
			if _, ok := visited[neighbor]; !ok {
				neighbors = append(neighbors, neighbor)
			}
		}
		sort.Strings(neighbors)
		stack = append(stack, neighbors...)
	}

	return component
}

func clusterPattern(members []string, nodes []common.ContradictionNode, mismatches []common.Mismatch) string {
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	label := ""
	for _, node := range nodes {
		if _, ok := memberSet[node.FacilityID]; ok {
			label = node.Type
			break
		}
	}
	if label == "" {
		return "Unknown pattern"
	}

	regions := clusterRegions(members, mismatches)
	regionStr := strings.Join(regions, ", ")
	if regionStr == "" {
		regionStr = "multiple regions"
	}

	return fmt.Sprintf("%d facilities in %s claim %s with infrastructure gaps",
		len(members), regionStr, decodeCapability(label))
}

// decodeCapability recovers the capability name from a contradiction-type
// label.
func decodeCapability(label string) string {
	if idx := strings.Index(label, "_without_"); idx >= 0 {
		return strings.ReplaceAll(label[:idx], "_", " ")
	}
	return strings.ReplaceAll(strings.TrimSuffix(label, "_infrastructure_gap"), "_", " ")
}

func clusterRegions(members []string, mismatches []common.Mismatch) []string {
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	seen := map[string]struct{}{}
	regions := []string{}
	for _, m := range mismatches {
		if _, ok := memberSet[m.FacilityID]; !ok {
			continue
		}
		if _, ok := seen[m.Location.Region]; ok {
			continue
		}
		seen[m.Location.Region] = struct{}{}
		regions = append(regions, m.Location.Region)
	}
	sort.Strings(regions)
	return regions
}

// isSystemicCluster applies the two systemic criteria: absolute size, then
// regional dominance. Dominance compares distinct cluster facilities in a
// region against distinct facilities with any mismatch in that region.
func isSystemicCluster(members []string, mismatches []common.Mismatch, clusterThreshold int) bool {
	if len(members) >= clusterThreshold {
		return true
	}

	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	clusterByRegion := map[string]map[string]struct{}{}
	totalByRegion := map[string]map[string]struct{}{}

	for _, m := range mismatches {
		region := m.Location.Region
		if totalByRegion[region] == nil {
			totalByRegion[region] = map[string]struct{}{}
		}
		totalByRegion[region][m.FacilityID] = struct{}{}

		if _, ok := memberSet[m.FacilityID]; ok {
			if clusterByRegion[region] == nil {
				clusterByRegion[region] = map[string]struct{}{}
			}
			clusterByRegion[region][m.FacilityID] = struct{}{}
		}
	}

	for region, clusterFacilities := range clusterByRegion {
		total := len(totalByRegion[region])
		if total > 0 && float64(len(clusterFacilities))/float64(total) > 0.5 {
			return true
		}
	}

	return false
}
