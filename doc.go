// Copyright 2025 facultydesk. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package facultydesk implements a small internal dashboard that tracks per-faculty
completion status across a fixed set of Google Sheets worksheet tabs.

Each configured faculty member has one spreadsheet. On every dashboard poll the
server reads the required tabs of each spreadsheet and reports a filled/not-filled
signal per tab:

  - a generic tab counts as filled when it has at least one non-empty row below
    the header
  - the 'Class Taken' tab counts as filled only when today's date appears
    somewhere in the tab

The dashboard is guarded by a single administrative login with a stateless
signed-cookie session. The server never writes to the spreadsheets and owns no
persistent storage - the spreadsheets are the system of record.
*/
package facultydesk
