/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package output provides shared output utilities for moduli CLI commands.
package output

import (
	"os"

	"github.com/spf13/viper"

	"bennypowers.dev/moduli/fs"
)

// Write sends rendered output to the file named by viper's "output"
// flag, or to stdout when the flag is unset.
func Write(osfs fs.FileSystem, content []byte) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, content, 0644)
	}
	_, err := os.Stdout.Write(content)
	return err
}
