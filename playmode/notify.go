// This file is part of NesCaster.
//
// NesCaster is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NesCaster is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NesCaster.  If not, see <https://www.gnu.org/licenses/>.

package playmode

import (
	"fmt"
	"io"

	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/notifications"
)

// termNotify surfaces session notifications on the terminal. A richer
// on-screen display could replace this without the rest of the session
// knowing.
type termNotify struct {
	output io.Writer
}

// Notify implements the notifications.Notify interface.
func (n *termNotify) Notify(notice notifications.Notice, detail string) error {
	s := string(notice)
	if detail != "" {
		s = fmt.Sprintf("%s (%s)", s, detail)
	}

	logger.Log("playmode", s)

	if n.output != nil {
		io.WriteString(n.output, fmt.Sprintf("* %s\n", s))
	}

	return nil
}
