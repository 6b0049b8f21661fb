package backend

import (
	"context"
	"net/url"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// GetSpectrumComprehensive returns the ERP enrichment for a job. Callers treat
// any error as "enrichment unavailable".
func (c *Client) GetSpectrumComprehensive(ctx context.Context, jobNumber string) (*project.SpectrumData, error) {
	var data project.SpectrumData
	path := "/spectrum/projects/" + url.PathEscape(jobNumber) + "/comprehensive/"
	if err := c.getObject(ctx, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
