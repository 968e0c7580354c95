// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"

	"github.com/keldadb/kelda/pkg/sql/pgwire/pgnotice"
	"github.com/keldadb/kelda/pkg/util/log"
)

// noticeBuffer accumulates notices produced during statement execution for
// delivery to the client by the wire protocol layer.
type noticeBuffer struct {
	notices []pgnotice.Notice
}

// BufferClientNotice implements the eval.ClientNoticeSender interface.
func (p *planner) BufferClientNotice(ctx context.Context, notice pgnotice.Notice) {
	log.Infof(ctx, "buffered notice: %v", notice)
	p.noticeBuf.notices = append(p.noticeBuf.notices, notice)
}

// ClientNotices drains the buffered notices.
func (p *planner) ClientNotices() []pgnotice.Notice {
	return p.noticeBuf.notices
}
