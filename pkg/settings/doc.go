// Package settings loads guild configuration documents.
//
// A configuration document is a YAML file describing everything the
// synchronization engine needs for one guild: the classification key,
// the ordered priority slots, the mapping table, the dependency graph
// and the guild toggles. Documents are validated as a whole before any
// part is written, so a document with a dependency cycle or a malformed
// slot never partially applies.
//
// # Document Format
//
//	classification_key: urn:oid:1.3.6.1.4.1.5923.1.1.1.1
//	settings:
//	  auto_assign: true
//	  sync_on_join: true
//	priority:
//	  - name: student
//	    triggers: [student]
//	    role: "198"
//	  - name: employee
//	    triggers: [faculty, staff, employee]
//	    role: "204"
//	mappings:
//	  urn:oid:2.5.4.11:
//	    mathematics: "311"
//	    physics: "312"
//	dependencies:
//	  "311": ["198"]
package settings
