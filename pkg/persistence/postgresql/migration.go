package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				nodes JSONB NOT NULL DEFAULT '[]',
				connections JSONB NOT NULL DEFAULT '[]',
				is_public BOOLEAN NOT NULL DEFAULT false,
				tags JSONB NOT NULL DEFAULT '[]',
				author VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_updated_at ON workflows(updated_at);
		`,
		2: `
			CREATE INDEX idx_workflows_tags ON workflows USING GIN (tags);
			CREATE INDEX idx_workflows_is_public ON workflows(is_public);
		`,
	}
}
