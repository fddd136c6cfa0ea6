package repository

var UUIDColumnType = uuidColumnType
