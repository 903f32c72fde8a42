// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package readyq

import "github.com/readypoll/readyq/internal/cerr"

const ErrQueueClosed = cerr.Error("readyqueue closed")
