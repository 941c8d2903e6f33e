package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgOk            = `Ok!`
	MsgUnexpectedErr = `Unexpected error: %s`
	MsgSendPhoto     = "Send a photo of your meal to analyze it. See /help for all commands."
	MsgVersionInfo   = "Version: %s\nBuilt: %s"
	MsgAnalyzing     = "🔍 Analyzing your meal..."
	MsgAlertFmt      = "⚠️ %s\n%s"
)

const MsgHelp = `
	Send a photo of a meal and I'll estimate its nutrition and health category.

	/stitch - analyze a meal photographed as separate items
	/done - finish a stitched meal
	/cancel - drop the photos collected for a stitched meal
	/history [n] - show your latest analyses
	/delete <id> - delete an analysis from history
	/meds - list your medications
	/addmed name; dosage; frequency; times; notes - add a medication
	/rmmed <id> - remove a medication
`

// =============================================================================
// Meal stitch messages
// =============================================================================

const (
	MsgStitchStarted     = "Send up to %d photos, one per item. Finish with /done or drop them with /cancel."
	MsgStitchAdded       = "Item %d added (%s collected)."
	MsgStitchFull        = "A meal can have at most %d items. Finish with /done or /cancel."
	MsgStitchNotActive   = "No stitched meal in progress. Start one with /stitch."
	MsgStitchNoPhotos    = "Send at least one photo before /done."
	MsgStitchUnavailable = "Meal stitching is not available."
	MsgStitchCancelled   = "Stitched meal cancelled."
	MsgStitchAnalyzing   = "🔍 Analyzing %s..."
)

// =============================================================================
// History messages
// =============================================================================

const (
	MsgHistoryUsage      = "Usage: `/history [count]`"
	MsgHistorySaveFailed = "The analysis could not be saved to your history."
	MsgDeleteUsage       = "Usage: `/delete <id>`"
	MsgAnalysisNotFound  = "No analysis with that id."
	MsgAnalysisDeleted   = "✅ Analysis deleted."
)

// =============================================================================
// Medication messages
// =============================================================================

const (
	MsgNoMedications     = "No medications saved. Add one with /addmed."
	MsgMedicationsHeader = "Your medications:\n"
	MsgAddMedUsage       = "Usage: `/addmed name; dosage; frequency; times; notes`\nOnly the name is required. Separate times with commas."
	MsgMedicationAdded   = "✅ Added %s"
	MsgRemoveMedUsage    = "Usage: `/rmmed <id>`"
	MsgMedicationRemoved = "✅ Medication removed."
	MsgMedicationMissing = "No medication with that id."
)

// =============================================================================
// Admin command messages
// =============================================================================

const (
	MsgAdminUsage           = "Usage:\n`/admin users add <user_id>`\n`/admin users remove <user_id>`\n`/admin users list`"
	MsgAdminUserAddUsage    = "Usage: `/admin users add <user_id>`"
	MsgAdminUserRemoveUsage = "Usage: `/admin users remove <user_id>`"
	MsgAdminUserInvalidID   = "Invalid user id. Give a number."
	MsgAdminUserAdded       = "✅ User `%d` added."
	MsgAdminUserRemoved     = "✅ User `%d` removed."
	MsgAdminNoUsers         = "No allowed users."
	MsgAdminAllowedUsers    = "*Allowed users:*\n"
)
