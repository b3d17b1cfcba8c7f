package config

// MergeLocal overlays local onto base field by field and returns the result.
// base is not mutated. Returns a copy of base if local is nil.
//
// Overrides are top-level only: a local list replaces the base list, it is
// not appended to.
func MergeLocal(base Config, local *LocalConfig) Config {
	merged := base.normalized()
	if local == nil {
		return merged
	}

	if local.WorktreeCopyPatterns != nil {
		merged.WorktreeCopyPatterns = cloneSlice(*local.WorktreeCopyPatterns)
	}
	if local.WorktreeCopyIgnores != nil {
		merged.WorktreeCopyIgnores = cloneSlice(*local.WorktreeCopyIgnores)
	}
	if local.WorktreePathTemplate != nil {
		merged.WorktreePathTemplate = *local.WorktreePathTemplate
	}
	if local.PostCreateCmd != nil {
		merged.PostCreateCmd = cloneSlice(*local.PostCreateCmd)
	}
	if local.TerminalCommand != nil {
		merged.TerminalCommand = *local.TerminalCommand
	}
	if local.DeleteBranchWithWorktree != nil {
		merged.DeleteBranchWithWorktree = *local.DeleteBranchWithWorktree
	}
	if local.BranchPrefix != nil {
		merged.BranchPrefix = *local.BranchPrefix
	}
	if local.DefaultSourceBranch != nil {
		merged.DefaultSourceBranch = *local.DefaultSourceBranch
	}

	return merged
}
