package sqlite

// Schema DDL. Columns are authoritative; timestamps are RFC 3339 TEXT and
// booleans are INTEGER 0/1. The statements are idempotent so opening an
// existing store is a no-op.
const (
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    name TEXT NOT NULL,
    description TEXT,
    created_by TEXT,
    updated_by TEXT,
    is_active INTEGER NOT NULL DEFAULT 1
);`

	createProjectSettings = `CREATE TABLE IF NOT EXISTS project_settings (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    setting_key TEXT NOT NULL,
    setting_value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    created_by TEXT NOT NULL,
    updated_by TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    UNIQUE(project_id, setting_key)
);`

	createWorkItemTypes = `CREATE TABLE IF NOT EXISTS work_item_types (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    allowed_children_type_ids TEXT NOT NULL DEFAULT '[]',
    allowed_statuses TEXT NOT NULL DEFAULT '[]',
    allowed_priorities TEXT NOT NULL DEFAULT '[]',
    assignment_field_definitions TEXT NOT NULL DEFAULT '[]',
    work_item_details TEXT NOT NULL DEFAULT '{}',
    work_item_fields TEXT NOT NULL DEFAULT '[]',
    name TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (project_id) REFERENCES projects(id)
);`

	createWorkItems = `CREATE TABLE IF NOT EXISTS work_items (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    priority INTEGER NOT NULL DEFAULT 0,
    created_by TEXT NOT NULL,
    assigned_to TEXT,
    project_id TEXT NOT NULL,
    type_id TEXT NOT NULL,
    sequential_number TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (type_id) REFERENCES work_item_types(id)
);`

	createWorkItemFieldValues = `CREATE TABLE IF NOT EXISTS work_item_field_values (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    work_item_id TEXT NOT NULL,
    field_id TEXT NOT NULL,
    is_assignment_field INTEGER NOT NULL DEFAULT 0,
    value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    created_by TEXT NOT NULL,
    updated_by TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (work_item_id) REFERENCES work_items(id)
);`

	createWorkItemNumberRanges = `CREATE TABLE IF NOT EXISTS work_item_number_ranges (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    machine_id TEXT NOT NULL,
    range_start INTEGER NOT NULL,
    range_end INTEGER NOT NULL,
    current_number INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    UNIQUE(project_id, machine_id, range_start)
);`

	createWorkItemRelationships = `CREATE TABLE IF NOT EXISTS work_item_relationships (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    source_work_item_id TEXT NOT NULL,
    target_work_item_id TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    created_by TEXT NOT NULL,
    updated_by TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (source_work_item_id) REFERENCES work_items(id),
    FOREIGN KEY (target_work_item_id) REFERENCES work_items(id),
    UNIQUE(source_work_item_id, target_work_item_id, relationship_type)
);`

	createLocalMachines = `CREATE TABLE IF NOT EXISTS local_machines (
    id TEXT PRIMARY KEY,
    os_machine_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    registered_at TEXT NOT NULL,
    last_seen_at TEXT NOT NULL,
    last_ip_address TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    is_duplicate INTEGER NOT NULL DEFAULT 0,
    UNIQUE(os_machine_id, user_id)
);`
)

// Index DDL for the common query paths.
const (
	idxWorkItemsProject       = `CREATE INDEX IF NOT EXISTS idx_work_items_project ON work_items(project_id);`
	idxWorkItemsProjectStatus = `CREATE INDEX IF NOT EXISTS idx_work_items_project_status ON work_items(project_id, status);`
	idxWorkItemsType          = `CREATE INDEX IF NOT EXISTS idx_work_items_type ON work_items(type_id);`
	idxWorkItemsSeqNumber     = `CREATE INDEX IF NOT EXISTS idx_work_items_seq_number ON work_items(project_id, sequential_number);`
	idxFieldValuesItem        = `CREATE INDEX IF NOT EXISTS idx_field_values_item ON work_item_field_values(work_item_id, field_id, is_active);`
	idxFieldValuesProject     = `CREATE INDEX IF NOT EXISTS idx_field_values_project ON work_item_field_values(project_id);`
	idxTypesProject           = `CREATE INDEX IF NOT EXISTS idx_types_project ON work_item_types(project_id, is_active);`
	idxRangesProject          = `CREATE INDEX IF NOT EXISTS idx_ranges_project ON work_item_number_ranges(project_id);`
	idxRangesProjectMachine   = `CREATE INDEX IF NOT EXISTS idx_ranges_project_machine ON work_item_number_ranges(project_id, machine_id);`
	idxSettingsProjectKey     = `CREATE INDEX IF NOT EXISTS idx_settings_project_key ON project_settings(project_id, setting_key);`
	idxSettingsSeqPrefix      = `CREATE UNIQUE INDEX IF NOT EXISTS idx_settings_unique_sequence_prefix ON project_settings(setting_value) WHERE setting_key = 'sequence_prefix';`
	idxRelationshipsSource    = `CREATE INDEX IF NOT EXISTS idx_relationships_source ON work_item_relationships(source_work_item_id, relationship_type, is_active);`
	idxRelationshipsTarget    = `CREATE INDEX IF NOT EXISTS idx_relationships_target ON work_item_relationships(target_work_item_id, relationship_type, is_active);`
	idxMachinesOSUser         = `CREATE INDEX IF NOT EXISTS idx_machines_os_user ON local_machines(os_machine_id, user_id);`
)

// schemaDDL lists CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProjects,
	createProjectSettings,
	createWorkItemTypes,
	createWorkItems,
	createWorkItemFieldValues,
	createWorkItemNumberRanges,
	createWorkItemRelationships,
	createLocalMachines,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxWorkItemsProject,
	idxWorkItemsProjectStatus,
	idxWorkItemsType,
	idxWorkItemsSeqNumber,
	idxFieldValuesItem,
	idxFieldValuesProject,
	idxTypesProject,
	idxRangesProject,
	idxRangesProjectMachine,
	idxSettingsProjectKey,
	idxSettingsSeqPrefix,
	idxRelationshipsSource,
	idxRelationshipsTarget,
	idxMachinesOSUser,
}
