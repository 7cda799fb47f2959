// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dylib

// Extension is the platform's dynamic library file suffix.
const Extension = ".dylib"
