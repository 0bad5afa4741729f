package search

import "path"

// ProjectForSession derives a candidate's project from its session
// identifier. Sessions are keyed "<project-path>/<session-name>"; a
// session id with no path component has no project.
func ProjectForSession(sessionID string) string {
	dir := path.Dir(sessionID)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// ProjectBoost returns the affinity multiplier between the query's
// project and a candidate's: 1.5 for the same project, 1.2 for sibling
// projects under the same parent, 1.0 otherwise. An empty project on
// either side is neutral.
func ProjectBoost(queryProject, candidateProject string) float64 {
	if queryProject == "" || candidateProject == "" {
		return 1.0
	}

	q := path.Clean(queryProject)
	c := path.Clean(candidateProject)
	if q == c {
		return 1.5
	}
	if path.Dir(q) == path.Dir(c) {
		return 1.2
	}
	return 1.0
}
