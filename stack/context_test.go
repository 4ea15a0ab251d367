// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stack_test

import (
	"context"
	"testing"

	"github.com/nw4j/nativestack/stack"
	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	_, ok := stack.FromContext(context.Background())
	assert.False(t, ok)

	s, _ := newStack(t, 16)
	ctx := stack.NewContext(context.Background(), s)
	got, ok := stack.FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, s, got)
}
