/*
Copyright © 2024 the ecosim authors.
This file is part of ecosim.

ecosim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ecosim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ecosim.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ecosim is a command-line interface for setting up the spatial
// domain and input data of an ecosystem simulation.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ecosim/ecoutil"
)

func main() {
	if err := ecoutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
